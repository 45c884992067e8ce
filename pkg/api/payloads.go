package api

import "time"

// Payloads of the structured data column, one per entity type.
// Timestamps are native; field names follow the remote schema.

type UserData struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Timezone    string `json:"timezone"`
	Units       string `json:"units"`
}

type SocialProfileData struct {
	Handle    string `json:"handle"`
	Bio       string `json:"bio"`
	AvatarURL string `json:"avatar_url"`
	IsPublic  bool   `json:"is_public"`
}

type ProgramData struct {
	StartDate   *time.Time `json:"start_date,omitempty"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	IsActive    bool       `json:"is_active"`
}

// ExerciseBlockData элемент колонки blocks; порядок в массиве соответствует Position.
type ExerciseBlockData struct {
	ExerciseID  string  `json:"exercise_id"`
	Notes       string  `json:"notes,omitempty"`
	WeightKg    float64 `json:"weight_kg"`
	Position    int     `json:"position"`
	Sets        int     `json:"sets"`
	Reps        int     `json:"reps"`
	RestSeconds int     `json:"rest_seconds"`
}

type TrainingDayData struct {
	ProgramID string              `json:"program_id"`
	Name      string              `json:"name"`
	Blocks    []ExerciseBlockData `json:"blocks"`
	DayIndex  int                 `json:"day_index"`
}

type LoggedSetData struct {
	ExerciseID string  `json:"exercise_id"`
	WeightKg   float64 `json:"weight_kg"`
	SetIndex   int     `json:"set_index"`
	Reps       int     `json:"reps"`
}

type WorkoutLogData struct {
	PerformedAt     time.Time       `json:"performed_at"`
	ProgramID       string          `json:"program_id,omitempty"`
	DayID           string          `json:"day_id,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	Sets            []LoggedSetData `json:"sets"`
	DurationSeconds int             `json:"duration_seconds"`
	XPEarned        int             `json:"xp_earned"`
}

type FocusSessionData struct {
	StartedAt       time.Time  `json:"started_at"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
	Label           string     `json:"label"`
	DurationSeconds int        `json:"duration_seconds"`
	Completed       bool       `json:"completed"`
}

type AchievementData struct {
	UnlockedAt time.Time `json:"unlocked_at"`
	BadgeID    string    `json:"badge_id"`
}

type GamificationData struct {
	LastActiveDate *time.Time `json:"last_active_date,omitempty"`
	TotalXP        int64      `json:"total_xp"`
	Level          int        `json:"level"`
	CurrentStreak  int        `json:"current_streak"`
	LongestStreak  int        `json:"longest_streak"`
}

type XPEventData struct {
	EarnedAt time.Time `json:"earned_at"`
	Reason   string    `json:"reason"`
	SourceID string    `json:"source_id,omitempty"`
	Amount   int       `json:"amount"`
}

type PersonalRecordData struct {
	AchievedAt   time.Time `json:"achieved_at"`
	ExerciseID   string    `json:"exercise_id"`
	Metric       string    `json:"metric"`
	WorkoutLogID string    `json:"workout_log_id,omitempty"`
	Value        float64   `json:"value"`
}

type CustomMealData struct {
	Name     string  `json:"name"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
	Calories int     `json:"calories"`
}

type CustomSupplementData struct {
	Name   string  `json:"name"`
	Unit   string  `json:"unit"`
	Dosage float64 `json:"dosage"`
}

type FollowData struct {
	FollowerID string `json:"follower_id"`
	FolloweeID string `json:"followee_id"`
}

type GroupMembershipData struct {
	JoinedAt time.Time `json:"joined_at"`
	GroupID  string    `json:"group_id"`
	MemberID string    `json:"member_id"`
	Role     string    `json:"role"`
}
