package game

// ActionResult reports what one player operation did to the session.
type ActionResult struct {
	Applied    bool           `json:"applied"`
	Label      string         `json:"label"`
	Stats      Snapshot       `json:"stats"`
	Phase      Phase          `json:"phase"`
	RolledOver bool           `json:"rolledOver"`
	Unlocked   []string       `json:"unlocked,omitempty"`
	Review     *ReviewReport  `json:"review,omitempty"`
	Reason     GameOverReason `json:"reason,omitempty"`
}

type QuizResult struct {
	Correct      bool     `json:"correct"`
	CorrectIndex int      `json:"correctIndex"`
	Explanation  string   `json:"explanation"`
	Stats        Snapshot `json:"stats"`
	Unlocked     []string `json:"unlocked,omitempty"`
}

// QuizView is a quiz without its answer.
type QuizView struct {
	Question   string     `json:"question"`
	Options    []string   `json:"options"`
	Difficulty Difficulty `json:"difficulty"`
}

// State is a read-only view of the whole session.
type State struct {
	GameID     string         `json:"gameId"`
	Phase      Phase          `json:"phase"`
	Stats      Snapshot       `json:"stats"`
	HistoryLen int            `json:"historyLen"`
	Unlocked   []string       `json:"unlocked"`
	Event      *NewsEvent     `json:"event,omitempty"`
	Quiz       *QuizView      `json:"quiz,omitempty"`
	Review     *ReviewReport  `json:"review,omitempty"`
	Reason     GameOverReason `json:"reason,omitempty"`
	Pending    bool           `json:"pending"`
}

type AchievementView struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Unlocked    bool   `json:"unlocked"`
}

type UpgradeView struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Level    int     `json:"level"`
	NextCost float64 `json:"nextCost"`
}

func (s Snapshot) YearsActive() int {
	return s.Year - StartYear
}
