package sync

// State состояние прохода синхронизации
type State string

const (
	StateIdle        State = "idle"
	StateProbing     State = "probing"
	StatePushing     State = "pushing"
	StatePulling     State = "pulling"
	StateReconciling State = "reconciling"
	StateCommitting  State = "committing"
	StateErrored     State = "errored"
	StateCancelled   State = "cancelled"
)

// PassResult итог одного прохода
type PassResult struct {
	Trace         []State // последовательность состояний прохода
	Rejected      []ConstraintRejection
	Skipped       []error // записи, пропущенные из-за SchemaMismatchError
	ProbeError    string
	Pushed        int // отправлено записей (после схлопывания)
	Acknowledged  int // удалено записей журнала
	Pulled        int
	Applied       int // записей, принятых из удаленного хранилища
	Flagged       int
	Orphaned      int
	Repushed      int
	NotConfigured bool
	Disconnected  bool
}
