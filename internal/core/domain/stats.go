package domain

import "time"

// DailyCompletion is one point of the 28-day chart.
type DailyCompletion struct {
	Date           string `json:"date"`
	CompletionRate int    `json:"completion_rate"`
}

type ProfileStats struct {
	ThisMonthRate      int               `json:"this_month_rate"`
	LastMonthRate      int               `json:"last_month_rate"`
	MonthDiff          int               `json:"month_diff"`
	Last28Days         []DailyCompletion `json:"last_28_days"`
	GlobalStreak       int               `json:"global_streak"`
	GlobalStreakCapped bool              `json:"global_streak_capped"`
	LongestStreak      int               `json:"longest_streak"`
	TotalCompletions   int               `json:"total_completions"`
	GeneratedFor       string            `json:"generated_for"`
}

type MonthlyRate struct {
	Month          string `json:"month"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	CompletionRate int    `json:"completion_rate"`
}

type PeriodProgress struct {
	Period      string `json:"period"`
	PeriodStart string `json:"period_start"`
	Progress    int    `json:"progress"`
	Goal        int    `json:"goal"`
	Percent     int    `json:"percent"`
}

type HomeRoutine struct {
	Routine      *Routine        `json:"routine"`
	DoneToday    bool            `json:"done_today"`
	TodayLogID   string          `json:"today_log_id,omitempty"`
	Streak       *int            `json:"streak,omitempty"`
	StreakCapped bool            `json:"streak_capped,omitempty"`
	PeriodicGoal *PeriodProgress `json:"periodic_goal,omitempty"`
}

type HomeSummary struct {
	Date               string        `json:"date"`
	Routines           []HomeRoutine `json:"routines"`
	CompletedDaily     int           `json:"completed_daily"`
	TotalDaily         int           `json:"total_daily"`
	GlobalStreak       int           `json:"global_streak"`
	GlobalStreakCapped bool          `json:"global_streak_capped"`
}

type StatsInput struct {
	UserID   string
	Location *time.Location
}
