package player

// AchievementID names one rule of the achievement table.
type AchievementID string

const (
	FirstWin    AchievementID = "first_win"
	Wins5       AchievementID = "wins_5"
	Wins10      AchievementID = "wins_10"
	Wins50      AchievementID = "wins_50"
	Wins100     AchievementID = "wins_100"
	Streak5     AchievementID = "streak_5"
	Streak10    AchievementID = "streak_10"
	Streak30    AchievementID = "streak_30"
	OneGuessWin AchievementID = "one_guess_win"
	EveryCount  AchievementID = "every_guess_count"
)

// Rule is one row of the achievement table.
type Rule struct {
	ID      AchievementID
	Title   string
	Message string
	Met     func(r *Record) bool
}

// Unlock is an achievement newly earned by the last evaluation.
type Unlock struct {
	ID      AchievementID `json:"id"`
	Message string        `json:"message"`
}

// Milestone is an achievement with its unlock state, for stats views.
type Milestone struct {
	ID       AchievementID `json:"id"`
	Title    string        `json:"title"`
	Unlocked bool          `json:"unlocked"`
}

// AchievementEngine evaluates a fixed, ordered rule table against a record.
// It keeps no state; unlock flags live on the record.
type AchievementEngine struct {
	rules []Rule
}

// NewAchievementEngine builds an engine over rules, evaluated in slice order.
func NewAchievementEngine(rules []Rule) *AchievementEngine {
	return &AchievementEngine{rules: rules}
}

var defaultAchievements = NewAchievementEngine([]Rule{
	{FirstWin, "First Win", "You have won your first game!", winsAtLeast(1)},
	{Wins5, "5 Wins", "You have won 5 games!", winsAtLeast(5)},
	{Wins10, "10 Wins", "You have won 10 games!", winsAtLeast(10)},
	{Wins50, "50 Wins", "You have won 50 games!", winsAtLeast(50)},
	{Wins100, "100 Wins", "You have won 100 games!", winsAtLeast(100)},
	{Streak5, "5 Win Streak", "You have a 5 win streak!", streakAtLeast(5)},
	{Streak10, "10 Win Streak", "You have a 10 win streak!", streakAtLeast(10)},
	{Streak30, "30 Win Streak", "You have a 30 win streak!", streakAtLeast(30)},
	{OneGuessWin, "Hole in One", "You won on your first guess!", func(r *Record) bool { return r.Wins[1] >= 1 }},
	{EveryCount, "Full House", "You have won using every possible number of guesses!", winAtEveryCount},
})

// DefaultAchievements is the standard rule table.
func DefaultAchievements() *AchievementEngine { return defaultAchievements }

// Rules returns the table in evaluation order.
func (e *AchievementEngine) Rules() []Rule { return e.rules }

// Evaluate flags every rule that is newly satisfied and returns them in table order.
// Rules already unlocked on the record are skipped, so each fires at most once per account.
func (e *AchievementEngine) Evaluate(r *Record) []Unlock {
	if r.Achievements == nil {
		r.Achievements = map[AchievementID]bool{}
	}
	var out []Unlock
	for _, rule := range e.rules {
		if r.Achievements[rule.ID] || !rule.Met(r) {
			continue
		}
		r.Achievements[rule.ID] = true
		out = append(out, Unlock{ID: rule.ID, Message: rule.Message})
	}
	return out
}

// Milestones lists every rule with the record's unlock state.
func (e *AchievementEngine) Milestones(r *Record) []Milestone {
	out := make([]Milestone, 0, len(e.rules))
	for _, rule := range e.rules {
		out = append(out, Milestone{ID: rule.ID, Title: rule.Title, Unlocked: r.Achievements[rule.ID]})
	}
	return out
}

func winsAtLeast(n int) func(*Record) bool {
	return func(r *Record) bool { return r.TotalWins >= n }
}

func streakAtLeast(n int) func(*Record) bool {
	return func(r *Record) bool { return r.Streak >= n }
}

func winAtEveryCount(r *Record) bool {
	for i := 1; i <= r.MaxGuesses; i++ {
		if r.Wins[i] < 1 {
			return false
		}
	}
	return r.MaxGuesses > 0
}
