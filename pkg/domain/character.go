package domain

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"strings"
)

// Character は4コマ全体に登場する主人公の定義を保持します。
type Character struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	VisualCues []string `json:"visual_cues"` // 生成プロンプトに注入する外見上の特徴
	Seed       int64    `json:"seed"`
}

// String はキャラクターの情報を文字列で返すのだ。
func (c Character) String() string {
	return fmt.Sprintf("%s (%s)", c.Name, c.ID)
}

// CueText は外見の特徴をカンマ区切りで連結します。
func (c Character) CueText() string {
	cues := make([]string, 0, len(c.VisualCues))
	for _, cue := range c.VisualCues {
		if cue = strings.TrimSpace(cue); cue != "" {
			cues = append(cues, cue)
		}
	}
	return strings.Join(cues, ", ")
}

// GetSeedFromName は名前から決定論的なシード値を生成します。
func GetSeedFromName(name string) int32 {
	hash := sha256.Sum256([]byte(name))
	seed := int32(binary.BigEndian.Uint32(hash[:4]))
	// 画像APIのシード値は正の数が望ましいため、最上位ビットを落とすのだ
	return seed & 0x7FFFFFFF
}

// NewCharacter は名前と特徴からキャラクター構造体を生成します。
// seed が 0 の場合は名前から導出します。
func NewCharacter(id, name string, visualCues []string, seed int32) Character {
	if seed == 0 {
		seed = GetSeedFromName(name)
	}
	return Character{
		ID:         id,
		Name:       name,
		VisualCues: append([]string(nil), visualCues...),
		Seed:       int64(seed),
	}
}

// NewProtagonist はセッションごとの主人公を作ります。
// 同じセッションでは常に同じシードになり、4コマの見た目が揃うのだ。
func NewProtagonist(sessionID string, visualCues []string) Character {
	key := sessionID
	if key == "" {
		key = "protagonist"
	}
	return NewCharacter("protagonist", "주인공", visualCues, GetSeedFromName(key))
}
