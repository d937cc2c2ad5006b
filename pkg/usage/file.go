package usage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

var safeClientIDRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// FileTracker は <dir>/<clientID>_<YYYY-MM-DD>.txt に整数を1つ書き込む方式で回数を保持します。
// 壊れたファイルは 0 回として扱うのだ。
type FileTracker struct {
	dir   string
	clock Clock
	mu    sync.Mutex
}

// NewFileTracker は FileTracker を生成し、ディレクトリを作成します。
func NewFileTracker(dir string, clock Clock) (*FileTracker, error) {
	if dir == "" {
		dir = "usage_data"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("利用回数ディレクトリの作成に失敗しました (%s): %w", dir, err)
	}
	return &FileTracker{dir: dir, clock: clock}, nil
}

func (t *FileTracker) path(clientID string) (string, error) {
	if !safeClientIDRegex.MatchString(clientID) {
		return "", fmt.Errorf("クライアントIDにファイル名として使えない文字が含まれています: %q", clientID)
	}
	name := fmt.Sprintf("%s_%s.txt", clientID, DateKey(t.clock.now()))
	return filepath.Join(t.dir, name), nil
}

func (t *FileTracker) read(path string) int {
	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("利用回数ファイルの読み込みに失敗しました", "path", path, "error", err)
		}
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil || n < 0 {
		slog.Warn("利用回数ファイルが壊れているため 0 として扱います", "path", path)
		return 0
	}
	return n
}

// Count は今日の利用回数を返します。
func (t *FileTracker) Count(_ context.Context, clientID string) (int, error) {
	path, err := t.path(clientID)
	if err != nil {
		return 0, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.read(path), nil
}

// Increment は今日の利用回数を1つ増やし、一時ファイル経由で書き換えます。
func (t *FileTracker) Increment(_ context.Context, clientID string) (int, error) {
	path, err := t.path(clientID)
	if err != nil {
		return 0, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	n := t.read(path) + 1
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(strconv.Itoa(n)), 0o644); err != nil {
		return 0, fmt.Errorf("利用回数ファイルの書き込みに失敗しました: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return 0, fmt.Errorf("利用回数ファイルの置き換えに失敗しました: %w", err)
	}
	return n, nil
}
