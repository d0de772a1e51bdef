package game

import "time"

// RunRecord 一局对局的摘要
type RunRecord struct {
	ID           string    `yaml:"id"` // 对局 UUID
	Seed         int64     `yaml:"seed"`
	TargetWave   int       `yaml:"targetWave"`
	WavesCleared int       `yaml:"wavesCleared"`
	Kills        int       `yaml:"kills"`
	BossKills    int       `yaml:"bossKills"`
	Won          bool      `yaml:"won"`
	Modifiers    []int     `yaml:"modifiers,omitempty"`
	XP           int       `yaml:"xp"`
	FinishedAt   time.Time `yaml:"finishedAt"`
}

// NewRunRecord 根据对局状态生成记录
func NewRunRecord(gs *GameState, seed int64) RunRecord {
	return RunRecord{
		ID:           gs.RunID.String(),
		Seed:         seed,
		TargetWave:   gs.TargetWave,
		WavesCleared: gs.WavesCleared,
		Kills:        gs.Kills,
		BossKills:    gs.BossKills,
		Won:          gs.Won,
		Modifiers:    append([]int(nil), gs.Effects.ModifierIDs...),
		XP:           RunXP(gs.WavesCleared, gs.BossKills, gs.Won),
		FinishedAt:   time.Now(),
	}
}
