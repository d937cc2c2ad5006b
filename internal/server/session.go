package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/shouni/go-emotion-comic/pkg/domain"
	"github.com/shouni/go-emotion-comic/pkg/session"
	"github.com/shouni/go-emotion-comic/pkg/wizard"
)

// CookieName はセッションIDを保持する Cookie の名前です。
const CookieName = "comic_session"

type sessionKey struct{}

// withSession は Cookie からセッションを復元し、コンテキストに格納します。
// 未知または期限切れのIDなら新しいセッションを発行するのだ。
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.loadSession(r)
		if err != nil {
			s.logger.ErrorContext(r.Context(), "セッションの読み込みに失敗しました", "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.setCookie(w, sess.ID)
		ctx := context.WithValue(r.Context(), sessionKey{}, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) loadSession(r *http.Request) (*domain.Session, error) {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		sess, err := s.app.Sessions.Get(r.Context(), c.Value)
		switch {
		case err == nil:
			verr := wizard.Validate(sess)
			if verr == nil {
				return sess, nil
			}
			s.discardSession(r.Context(), c.Value, verr)
		case errors.Is(err, session.ErrCorrupt):
			s.discardSession(r.Context(), c.Value, err)
		case !errors.Is(err, session.ErrNotFound):
			return nil, err
		}
	}
	sess := domain.NewSession(uuid.NewString(), s.now())
	if err := s.app.Sessions.Save(r.Context(), sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// discardSession は復元できないセッションを捨てます。削除に失敗しても新しいセッションで続行するのだ。
func (s *Server) discardSession(ctx context.Context, id string, cause error) {
	s.logger.WarnContext(ctx, "不整合なセッションを破棄します", "session_id", id, "error", cause)
	if err := s.app.Sessions.Delete(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "セッションの削除に失敗しました", "session_id", id, "error", err)
	}
}

func (s *Server) setCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(s.app.Config.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func sessionFrom(ctx context.Context) *domain.Session {
	sess, _ := ctx.Value(sessionKey{}).(*domain.Session)
	return sess
}

func (s *Server) saveSession(ctx context.Context, sess *domain.Session) error {
	return s.app.Sessions.Save(ctx, sess)
}
