package wizard

import (
	"errors"
	"fmt"

	"github.com/shouni/go-emotion-comic/pkg/domain"
)

var (
	// ErrInvalidInput は入力値が検証に失敗したことを示します。
	ErrInvalidInput = errors.New("wizard: 入力値が不正です")
	// ErrWrongStep は現在のステップでは受け付けない操作であることを示します。
	ErrWrongStep = errors.New("wizard: 現在のステップでは実行できません")
	// ErrUnsafeContent は安全性検査で不適切と判定されたことを示します。
	ErrUnsafeContent = errors.New("wizard: 不適切な内容が含まれています")
)

// InputError は利用者に表示するメッセージ付きの入力エラーです。
type InputError struct {
	Field   string
	Message string
	cause   error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *InputError) Unwrap() error {
	return e.cause
}

func invalid(field, message string) error {
	return &InputError{Field: field, Message: message, cause: ErrInvalidInput}
}

func unsafe(field string) error {
	return &InputError{Field: field, Message: MsgUnsafe, cause: ErrUnsafeContent}
}

func wrongStep(want, got domain.Step) error {
	return fmt.Errorf("%w: want=%s got=%s", ErrWrongStep, want, got)
}

// 利用者向けのメッセージ
const (
	MsgRequired = "내용을 입력해 주세요."
	MsgTooLong  = "300자 이내로 입력해 주세요."
	MsgUnknown  = "목록에서 선택해 주세요."
	MsgUnsafe   = "⚠️ 부적절한 내용이 포함되어 있습니다. 다른 표현으로 다시 입력해 주세요."
)

// UserMessage はエラーから画面に表示する文言を取り出します。
func UserMessage(err error) string {
	var ie *InputError
	if errors.As(err, &ie) {
		return ie.Message
	}
	if errors.Is(err, ErrWrongStep) {
		return "잘못된 단계입니다. 처음부터 다시 시작해 주세요."
	}
	return "알 수 없는 오류가 발생했습니다."
}
