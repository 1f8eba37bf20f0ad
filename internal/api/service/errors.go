package service

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrUnauthenticated     = errors.New("ログインが必要です")
	ErrForbidden           = errors.New("権限がありません")
	ErrAdminRequired       = errors.New("管理者権限が必要です")
	ErrNotFound            = errors.New("not found")
	ErrLocationRequired    = errors.New("位置情報が必要です")
	ErrPhotosRequired      = errors.New("photos が必要です")
	ErrPhotoIDRequired     = errors.New("photo_id が必要です")
	ErrPhotoNotFound       = errors.New("写真が見つかりません")
	ErrHeaderPhotoNotFound = errors.New("指定された写真が見つかりません")
	ErrAvatarRequired      = errors.New("アバター画像が選択されていません")
	ErrInvalidCredentials  = errors.New("メールアドレスまたはパスワードが違います")
	ErrInvalidToken        = errors.New("invalid token")
)

// ValidationError carries field messages, rendered as {"errors": [...]}.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, ", ")
}

// validation collects messages and returns nil when there are none.
type validation []string

func (v *validation) add(msg string) {
	*v = append(*v, msg)
}

func (v validation) err() error {
	if len(v) == 0 {
		return nil
	}
	return &ValidationError{Messages: []string(v)}
}

// notFound maps a missing row to ErrNotFound and passes other errors through.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
