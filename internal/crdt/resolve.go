package crdt

import (
	"bytes"
	"cmp"
	"encoding/json"
	"strings"

	"github.com/iudanet/fitsync/internal/models"
)

// Winner сторона, чья версия записи сохраняется
type Winner string

const (
	WinnerLocal  Winner = "local"
	WinnerRemote Winner = "remote"
)

// Decision результат сравнения локальной и удаленной версий одной записи.
// Не сохраняется и вычисляется заново при каждом проходе синхронизации.
type Decision struct {
	Merged  models.Entity
	Winner  Winner
	Flagged bool // удаление и правка с одинаковой меткой: данные сохранены, нужна проверка пользователем
	Repush  bool // локальная версия новее удаленной и должна быть отправлена повторно
}

// Resolve выбирает версию записи по правилу last-write-wins на уровне записи.
//
// Порядок правил:
//   - больший UpdatedAt побеждает;
//   - при равных метках удаление против правки сохраняет данные и помечает запись (Flagged);
//   - затем побеждает больший DeviceID;
//   - затем большее каноническое JSON представление.
//
// Функция чистая: результат зависит только от содержимого аргументов, а перестановка
// аргументов меняет только метку Winner. Полностью совпадающие версии дают WinnerLocal
// без повторной отправки.
func Resolve(local, remote models.Entity) Decision {
	switch {
	case local == nil && remote == nil:
		return Decision{}
	case local == nil:
		return Decision{Winner: WinnerRemote, Merged: models.Clone(remote)}
	case remote == nil:
		return Decision{Winner: WinnerLocal, Merged: models.Clone(local), Repush: true}
	}

	l, r := local.Sync(), remote.Sync()

	var d Decision
	switch c := Compare(VersionOf(local), VersionOf(remote)); {
	case c > 0:
		d = localWins(local)
	case c < 0:
		d = remoteWins(remote)
	default:
		switch bytes.Compare(canonical(local), canonical(remote)) {
		case 0:
			return Decision{Winner: WinnerLocal, Merged: models.Clone(local)}
		case 1:
			return localWins(local)
		default:
			return remoteWins(remote)
		}
	}

	if l.UpdatedAt == r.UpdatedAt && l.IsDeleted() != r.IsDeleted() {
		d.Flagged = true
		d.Merged.Sync().NeedsReview = true
	}
	return d
}

// Version метаданные версии записи, по которым выбирается победитель.
// Клиент и сервер сравнивают версии одной функцией Compare.
type Version struct {
	DeviceID  string
	UpdatedAt int64
	Deleted   bool
}

// VersionOf возвращает метаданные версии локальной записи
func VersionOf(e models.Entity) Version {
	f := e.Sync()
	return Version{DeviceID: f.DeviceID, UpdatedAt: f.UpdatedAt, Deleted: f.IsDeleted()}
}

// Compare возвращает положительное число, если версия a побеждает b,
// отрицательное, если побеждает b, и 0, если метаданные совпадают.
// Больший UpdatedAt побеждает; при равных метках живая запись побеждает
// tombstone; затем побеждает больший DeviceID.
func Compare(a, b Version) int {
	if a.UpdatedAt != b.UpdatedAt {
		return cmp.Compare(a.UpdatedAt, b.UpdatedAt)
	}
	if a.Deleted != b.Deleted {
		if a.Deleted {
			return -1
		}
		return 1
	}
	return strings.Compare(a.DeviceID, b.DeviceID)
}

func localWins(local models.Entity) Decision {
	return Decision{Winner: WinnerLocal, Merged: models.Clone(local), Repush: true}
}

func remoteWins(remote models.Entity) Decision {
	return Decision{Winner: WinnerRemote, Merged: models.Clone(remote)}
}

// canonical сериализует запись без локальных флагов
func canonical(e models.Entity) []byte {
	cp := models.Clone(e)
	cp.Sync().Orphaned = false
	cp.Sync().NeedsReview = false
	raw, err := json.Marshal(cp)
	if err != nil {
		return nil
	}
	return raw
}
