package models

// User профиль пользователя в локальном хранилище
type User struct {
	SyncFields
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Timezone    string `json:"timezone"`
	Units       string `json:"units"` // "metric" или "imperial"
}

func (*User) Kind() EntityType { return EntityUser }

// SocialProfile публичный профиль; Handle уникален в удаленном хранилище.
type SocialProfile struct {
	SyncFields
	Handle    string `json:"handle"`
	Bio       string `json:"bio"`
	AvatarURL string `json:"avatarUrl"`
	IsPublic  bool   `json:"isPublic"`
}

func (*SocialProfile) Kind() EntityType { return EntitySocialProfile }

// Program тренировочная программа
type Program struct {
	SyncFields
	Name        string `json:"name"`
	Description string `json:"description"`
	StartDate   string `json:"startDate,omitempty"`
	Active      bool   `json:"active"`
}

func (*Program) Kind() EntityType { return EntityProgram }

// ExerciseBlock упражнение внутри тренировочного дня. Блоки не синхронизируются
// отдельно и передаются только вместе с родительским днем.
type ExerciseBlock struct {
	ExerciseID string  `json:"exerciseId"`
	Notes      string  `json:"notes,omitempty"`
	WeightKg   float64 `json:"weightKg"`
	Order      int     `json:"order"`
	Sets       int     `json:"sets"`
	Reps       int     `json:"reps"`
	RestSec    int     `json:"restSec"`
}

// TrainingDay день программы; ссылается на программу через ProgramID.
type TrainingDay struct {
	SyncFields
	ProgramID string          `json:"programId"`
	Name      string          `json:"name"`
	Blocks    []ExerciseBlock `json:"blocks"`
	DayIndex  int             `json:"dayIndex"`
}

func (*TrainingDay) Kind() EntityType { return EntityTrainingDay }

// LoggedSet выполненный подход
type LoggedSet struct {
	ExerciseID string  `json:"exerciseId"`
	WeightKg   float64 `json:"weightKg"`
	SetIndex   int     `json:"setIndex"`
	Reps       int     `json:"reps"`
}

// WorkoutLog запись о выполненной тренировке.
// ProgramID и DayID могут быть пустыми для свободной тренировки.
type WorkoutLog struct {
	SyncFields
	ProgramID   string      `json:"programId,omitempty"`
	DayID       string      `json:"dayId,omitempty"`
	PerformedAt string      `json:"performedAt"`
	Notes       string      `json:"notes,omitempty"`
	Sets        []LoggedSet `json:"sets"`
	DurationSec int         `json:"durationSec"`
	XPEarned    int         `json:"xpEarned"`
}

func (*WorkoutLog) Kind() EntityType { return EntityWorkoutLog }

// FocusSession сессия фокусировки (таймер)
type FocusSession struct {
	SyncFields
	Label       string `json:"label"`
	StartedAt   string `json:"startedAt"`
	EndedAt     string `json:"endedAt,omitempty"`
	DurationSec int    `json:"durationSec"`
	Completed   bool   `json:"completed"`
}

func (*FocusSession) Kind() EntityType { return EntityFocusSession }

// Achievement полученный значок
type Achievement struct {
	SyncFields
	BadgeID    string `json:"badgeId"`
	UnlockedAt string `json:"unlockedAt"`
}

func (*Achievement) Kind() EntityType { return EntityAchievement }

// Gamification агрегированные показатели пользователя (одна запись на владельца)
type Gamification struct {
	SyncFields
	LastActiveDate string `json:"lastActiveDate,omitempty"`
	TotalXP        int64  `json:"totalXp"`
	Level          int    `json:"level"`
	CurrentStreak  int    `json:"currentStreak"`
	LongestStreak  int    `json:"longestStreak"`
}

func (*Gamification) Kind() EntityType { return EntityGamification }

// XPEvent начисление опыта
type XPEvent struct {
	SyncFields
	Reason   string `json:"reason"`
	SourceID string `json:"sourceId,omitempty"`
	EarnedAt string `json:"earnedAt"`
	Amount   int    `json:"amount"`
}

func (*XPEvent) Kind() EntityType { return EntityXPEvent }

// PersonalRecord личный рекорд по упражнению и метрике
type PersonalRecord struct {
	SyncFields
	ExerciseID   string  `json:"exerciseId"`
	Metric       string  `json:"metric"` // например "1rm", "max_reps"
	AchievedAt   string  `json:"achievedAt"`
	WorkoutLogID string  `json:"workoutLogId,omitempty"`
	Value        float64 `json:"value"`
}

func (*PersonalRecord) Kind() EntityType { return EntityPersonalRecord }

// CustomMeal пользовательское блюдо
type CustomMeal struct {
	SyncFields
	Name     string  `json:"name"`
	ProteinG float64 `json:"proteinG"`
	CarbsG   float64 `json:"carbsG"`
	FatG     float64 `json:"fatG"`
	Calories int     `json:"calories"`
}

func (*CustomMeal) Kind() EntityType { return EntityCustomMeal }

// CustomSupplement пользовательская добавка
type CustomSupplement struct {
	SyncFields
	Name   string  `json:"name"`
	Unit   string  `json:"unit"`
	Dosage float64 `json:"dosage"`
}

func (*CustomSupplement) Kind() EntityType { return EntityCustomSupplement }

// Follow подписка на другого пользователя; пара (FollowerID, FolloweeID) уникальна.
type Follow struct {
	SyncFields
	FollowerID string `json:"followerId"`
	FolloweeID string `json:"followeeId"`
}

func (*Follow) Kind() EntityType { return EntityFollow }

// GroupMembership членство в группе; пара (GroupID, MemberID) уникальна.
type GroupMembership struct {
	SyncFields
	GroupID  string `json:"groupId"`
	MemberID string `json:"memberId"`
	Role     string `json:"role"`
	JoinedAt string `json:"joinedAt"`
}

func (*GroupMembership) Kind() EntityType { return EntityGroupMembership }
