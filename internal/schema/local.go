package schema

import (
	"encoding/json"

	"github.com/iudanet/fitsync/internal/models"
	"github.com/iudanet/fitsync/internal/timex"
	"github.com/iudanet/fitsync/pkg/api"
)

// ToLocal переводит строку удаленного хранилища в локальную запись.
// Даты переводятся в канонический текст RFC3339 (UTC); пустые даты остаются пустыми.
func ToLocal(r api.Record) (models.Entity, error) {
	kind := models.EntityType(r.EntityType)
	e, err := models.NewEntity(kind)
	if err != nil {
		return nil, mismatch(kind, r.ID, "entity_type", err.Error())
	}
	if r.ID == "" {
		return nil, mismatch(kind, r.ID, "id", "required")
	}
	if r.OwnerID == "" {
		return nil, mismatch(kind, r.ID, "owner_id", "required")
	}

	*e.Sync() = models.SyncFields{
		ID:        r.ID,
		OwnerID:   r.OwnerID,
		DeviceID:  r.DeviceID,
		CreatedAt: timex.Format(r.CreatedAt),
		DeletedAt: timex.FormatOptional(r.DeletedAt),
		UpdatedAt: r.UpdatedAt,
	}

	tomb := r.DeletedAt != nil
	decode := func(dst any) error {
		if len(r.Data) == 0 || string(r.Data) == "null" {
			if tomb {
				return nil
			}
			return mismatch(kind, r.ID, "data", "required")
		}
		if err := json.Unmarshal(r.Data, dst); err != nil {
			return mismatch(kind, r.ID, "data", err.Error())
		}
		return nil
	}

	switch v := e.(type) {
	case *models.User:
		var d api.UserData
		if err := decode(&d); err != nil {
			return nil, err
		}
		v.Email = d.Email
		v.DisplayName = d.DisplayName
		v.Timezone = d.Timezone
		v.Units = d.Units
	case *models.SocialProfile:
		var d api.SocialProfileData
		if err := decode(&d); err != nil {
			return nil, err
		}
		v.Handle = d.Handle
		v.Bio = d.Bio
		v.AvatarURL = d.AvatarURL
		v.IsPublic = d.IsPublic
	case *models.Program:
		var d api.ProgramData
		if err := decode(&d); err != nil {
			return nil, err
		}
		v.Name = d.Name
		v.Description = d.Description
		v.StartDate = timex.FormatOptional(d.StartDate)
		v.Active = d.IsActive
	case *models.TrainingDay:
		var d api.TrainingDayData
		if err := decode(&d); err != nil {
			return nil, err
		}
		v.ProgramID = d.ProgramID
		if v.ProgramID == "" {
			v.ProgramID = r.ParentID
		}
		v.Name = d.Name
		v.DayIndex = d.DayIndex
		v.Blocks = make([]models.ExerciseBlock, 0, len(d.Blocks))
		for _, b := range d.Blocks {
			v.Blocks = append(v.Blocks, models.ExerciseBlock{
				ExerciseID: b.ExerciseID,
				Notes:      b.Notes,
				WeightKg:   b.WeightKg,
				Order:      b.Position,
				Sets:       b.Sets,
				Reps:       b.Reps,
				RestSec:    b.RestSeconds,
			})
		}
	case *models.WorkoutLog:
		var d api.WorkoutLogData
		if err := decode(&d); err != nil {
			return nil, err
		}
		v.ProgramID = d.ProgramID
		v.DayID = d.DayID
		v.PerformedAt = timex.Format(d.PerformedAt)
		v.Notes = d.Notes
		v.DurationSec = d.DurationSeconds
		v.XPEarned = d.XPEarned
		v.Sets = make([]models.LoggedSet, 0, len(d.Sets))
		for _, s := range d.Sets {
			v.Sets = append(v.Sets, models.LoggedSet{
				ExerciseID: s.ExerciseID,
				WeightKg:   s.WeightKg,
				SetIndex:   s.SetIndex,
				Reps:       s.Reps,
			})
		}
	case *models.FocusSession:
		var d api.FocusSessionData
		if err := decode(&d); err != nil {
			return nil, err
		}
		v.Label = d.Label
		v.StartedAt = timex.Format(d.StartedAt)
		v.EndedAt = timex.FormatOptional(d.EndedAt)
		v.DurationSec = d.DurationSeconds
		v.Completed = d.Completed
	case *models.Achievement:
		var d api.AchievementData
		if err := decode(&d); err != nil {
			return nil, err
		}
		v.BadgeID = d.BadgeID
		v.UnlockedAt = timex.Format(d.UnlockedAt)
	case *models.Gamification:
		var d api.GamificationData
		if err := decode(&d); err != nil {
			return nil, err
		}
		v.LastActiveDate = timex.FormatOptional(d.LastActiveDate)
		v.TotalXP = d.TotalXP
		v.Level = d.Level
		v.CurrentStreak = d.CurrentStreak
		v.LongestStreak = d.LongestStreak
	case *models.XPEvent:
		var d api.XPEventData
		if err := decode(&d); err != nil {
			return nil, err
		}
		v.Reason = d.Reason
		v.SourceID = d.SourceID
		v.EarnedAt = timex.Format(d.EarnedAt)
		v.Amount = d.Amount
	case *models.PersonalRecord:
		var d api.PersonalRecordData
		if err := decode(&d); err != nil {
			return nil, err
		}
		v.ExerciseID = d.ExerciseID
		v.Metric = d.Metric
		v.AchievedAt = timex.Format(d.AchievedAt)
		v.WorkoutLogID = d.WorkoutLogID
		v.Value = d.Value
	case *models.CustomMeal:
		var d api.CustomMealData
		if err := decode(&d); err != nil {
			return nil, err
		}
		v.Name = d.Name
		v.ProteinG = d.ProteinG
		v.CarbsG = d.CarbsG
		v.FatG = d.FatG
		v.Calories = d.Calories
	case *models.CustomSupplement:
		var d api.CustomSupplementData
		if err := decode(&d); err != nil {
			return nil, err
		}
		v.Name = d.Name
		v.Unit = d.Unit
		v.Dosage = d.Dosage
	case *models.Follow:
		var d api.FollowData
		if err := decode(&d); err != nil {
			return nil, err
		}
		v.FollowerID = d.FollowerID
		v.FolloweeID = d.FolloweeID
	case *models.GroupMembership:
		var d api.GroupMembershipData
		if err := decode(&d); err != nil {
			return nil, err
		}
		v.GroupID = d.GroupID
		v.MemberID = d.MemberID
		v.Role = d.Role
		v.JoinedAt = timex.Format(d.JoinedAt)
	}

	return e, nil
}
