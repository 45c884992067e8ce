package schema

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/iudanet/fitsync/internal/models"
	"github.com/iudanet/fitsync/internal/timex"
	"github.com/iudanet/fitsync/pkg/api"
)

// ToRemote переводит локальную запись в представление удаленного хранилища.
// Для удаленных записей (tombstone) проверка обязательных полей payload не выполняется:
// удаление должно дойти до сервера даже из неполного снимка.
func ToRemote(e models.Entity) (api.Record, error) {
	s := e.Sync()
	kind := e.Kind()

	if s.ID == "" {
		return api.Record{}, mismatch(kind, s.ID, "id", "required")
	}
	if s.OwnerID == "" {
		return api.Record{}, mismatch(kind, s.ID, "owner_id", "required")
	}

	rec := api.Record{
		ID:         s.ID,
		OwnerID:    s.OwnerID,
		EntityType: string(kind),
		DeviceID:   s.DeviceID,
		UpdatedAt:  s.UpdatedAt,
		CreatedAt:  timex.ToRequiredTime(s.CreatedAt),
	}
	tomb := s.IsDeleted()
	if tomb {
		deletedAt := timex.ToRequiredTime(s.DeletedAt)
		rec.DeletedAt = &deletedAt
	}

	m := &mapper{kind: kind, id: s.ID, tomb: tomb}
	var data any

	switch v := e.(type) {
	case *models.User:
		m.require("email", v.Email)
		data = api.UserData{
			Email:       v.Email,
			DisplayName: v.DisplayName,
			Timezone:    v.Timezone,
			Units:       v.Units,
		}
	case *models.SocialProfile:
		m.require("handle", v.Handle)
		rec.UniqueKey = m.uniqueKey(strings.ToLower(v.Handle))
		data = api.SocialProfileData{
			Handle:    v.Handle,
			Bio:       v.Bio,
			AvatarURL: v.AvatarURL,
			IsPublic:  v.IsPublic,
		}
	case *models.Program:
		m.require("name", v.Name)
		data = api.ProgramData{
			Name:        v.Name,
			Description: v.Description,
			StartDate:   timex.ToOptionalTime(v.StartDate),
			IsActive:    v.Active,
		}
	case *models.TrainingDay:
		m.require("program_id", v.ProgramID)
		rec.ParentID = v.ProgramID
		blocks := make([]api.ExerciseBlockData, 0, len(v.Blocks))
		for _, b := range v.Blocks {
			blocks = append(blocks, api.ExerciseBlockData{
				ExerciseID:  b.ExerciseID,
				Notes:       b.Notes,
				WeightKg:    b.WeightKg,
				Position:    b.Order,
				Sets:        b.Sets,
				Reps:        b.Reps,
				RestSeconds: b.RestSec,
			})
		}
		data = api.TrainingDayData{
			ProgramID: v.ProgramID,
			Name:      v.Name,
			Blocks:    blocks,
			DayIndex:  v.DayIndex,
		}
	case *models.WorkoutLog:
		rec.ParentID = v.ProgramID
		sets := make([]api.LoggedSetData, 0, len(v.Sets))
		for _, set := range v.Sets {
			sets = append(sets, api.LoggedSetData{
				ExerciseID: set.ExerciseID,
				WeightKg:   set.WeightKg,
				SetIndex:   set.SetIndex,
				Reps:       set.Reps,
			})
		}
		data = api.WorkoutLogData{
			PerformedAt:     m.requiredTime("performed_at", v.PerformedAt),
			ProgramID:       v.ProgramID,
			DayID:           v.DayID,
			Notes:           v.Notes,
			Sets:            sets,
			DurationSeconds: v.DurationSec,
			XPEarned:        v.XPEarned,
		}
	case *models.FocusSession:
		data = api.FocusSessionData{
			StartedAt:       m.requiredTime("started_at", v.StartedAt),
			EndedAt:         timex.ToOptionalTime(v.EndedAt),
			Label:           v.Label,
			DurationSeconds: v.DurationSec,
			Completed:       v.Completed,
		}
	case *models.Achievement:
		m.require("badge_id", v.BadgeID)
		data = api.AchievementData{
			UnlockedAt: m.defaultedTime(v.UnlockedAt),
			BadgeID:    v.BadgeID,
		}
	case *models.Gamification:
		rec.UniqueKey = m.uniqueKey(s.OwnerID)
		data = api.GamificationData{
			LastActiveDate: timex.ToOptionalTime(v.LastActiveDate),
			TotalXP:        v.TotalXP,
			Level:          v.Level,
			CurrentStreak:  v.CurrentStreak,
			LongestStreak:  v.LongestStreak,
		}
	case *models.XPEvent:
		data = api.XPEventData{
			EarnedAt: m.defaultedTime(v.EarnedAt),
			Reason:   v.Reason,
			SourceID: v.SourceID,
			Amount:   v.Amount,
		}
	case *models.PersonalRecord:
		m.require("exercise_id", v.ExerciseID)
		m.require("metric", v.Metric)
		rec.UniqueKey = m.uniqueKey(s.OwnerID + ":" + v.ExerciseID + ":" + v.Metric)
		data = api.PersonalRecordData{
			AchievedAt:   m.requiredTime("achieved_at", v.AchievedAt),
			ExerciseID:   v.ExerciseID,
			Metric:       v.Metric,
			WorkoutLogID: v.WorkoutLogID,
			Value:        v.Value,
		}
	case *models.CustomMeal:
		m.require("name", v.Name)
		data = api.CustomMealData{
			Name:     v.Name,
			ProteinG: v.ProteinG,
			CarbsG:   v.CarbsG,
			FatG:     v.FatG,
			Calories: v.Calories,
		}
	case *models.CustomSupplement:
		m.require("name", v.Name)
		data = api.CustomSupplementData{
			Name:   v.Name,
			Unit:   v.Unit,
			Dosage: v.Dosage,
		}
	case *models.Follow:
		m.require("follower_id", v.FollowerID)
		m.require("followee_id", v.FolloweeID)
		rec.UniqueKey = m.uniqueKey(v.FollowerID + "->" + v.FolloweeID)
		data = api.FollowData{
			FollowerID: v.FollowerID,
			FolloweeID: v.FolloweeID,
		}
	case *models.GroupMembership:
		m.require("group_id", v.GroupID)
		m.require("member_id", v.MemberID)
		rec.UniqueKey = m.uniqueKey(v.GroupID + ":" + v.MemberID)
		data = api.GroupMembershipData{
			JoinedAt: m.defaultedTime(v.JoinedAt),
			GroupID:  v.GroupID,
			MemberID: v.MemberID,
			Role:     v.Role,
		}
	default:
		return api.Record{}, mismatch(kind, s.ID, "entity_type", "unsupported entity type")
	}

	if m.err != nil {
		return api.Record{}, m.err
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return api.Record{}, mismatch(kind, s.ID, "data", err.Error())
	}
	rec.Data = raw

	return rec, nil
}

// mapper накапливает первую ошибку отображения полей одной записи
type mapper struct {
	err  *SchemaMismatchError
	kind models.EntityType
	id   string
	tomb bool
}

func (m *mapper) require(field, value string) {
	if m.err != nil || m.tomb || value != "" {
		return
	}
	m.err = mismatch(m.kind, m.id, field, "required")
}

// requiredTime - обязательная метка без значения по умолчанию
func (m *mapper) requiredTime(field, value string) time.Time {
	t := timex.ToOptionalTime(value)
	if t != nil {
		return *t
	}
	if m.err == nil && !m.tomb {
		m.err = mismatch(m.kind, m.id, field, "missing or unparseable timestamp")
	}
	return time.Time{}
}

// defaultedTime - обязательная метка, для которой схема допускает текущее время
func (m *mapper) defaultedTime(value string) time.Time {
	if m.tomb {
		if t := timex.ToOptionalTime(value); t != nil {
			return *t
		}
		return time.Time{}
	}
	return timex.ToRequiredTime(value)
}

// uniqueKey не выставляется для удаленных записей, чтобы освободить ключ
func (m *mapper) uniqueKey(key string) string {
	if m.tomb {
		return ""
	}
	return key
}
