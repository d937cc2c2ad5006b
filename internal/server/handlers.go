package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/shouni/go-emotion-comic/pkg/domain"
	"github.com/shouni/go-emotion-comic/pkg/usage"
	"github.com/shouni/go-emotion-comic/pkg/wizard"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

// handleIndex は現在のステップの画面を表示します。
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	s.render(w, r, http.StatusOK, s.page(r, sess))
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	s.submit(w, r, "", func(sess *domain.Session) error {
		p := domain.Profile{
			AgeGroup: r.PostFormValue("age_group"),
			Gender:   r.PostFormValue("gender"),
			ArtStyle: r.PostFormValue("art_style"),
		}
		return s.app.Machine.SubmitProfile(r.Context(), sess, p)
	})
}

func (s *Server) handleSituation(w http.ResponseWriter, r *http.Request) {
	text := r.PostFormValue("situation")
	s.submit(w, r, text, func(sess *domain.Session) error {
		return s.app.Machine.SubmitSituation(r.Context(), sess, text)
	})
}

func (s *Server) handleEmotion(w http.ResponseWriter, r *http.Request) {
	s.submit(w, r, "", func(sess *domain.Session) error {
		return s.app.Machine.SubmitEmotion(r.Context(), sess, r.PostFormValue("emotion"))
	})
}

func (s *Server) handleReason(w http.ResponseWriter, r *http.Request) {
	text := r.PostFormValue("reason")
	s.submit(w, r, text, func(sess *domain.Session) error {
		return s.app.Machine.SubmitReason(r.Context(), sess, text)
	})
}

// submit はステップの入力を適用し、成功すればトップに戻ります。
// 入力エラーは同じステップの画面にメッセージ付きで表示するのだ。
func (s *Server) submit(w http.ResponseWriter, r *http.Request, value string, apply func(*domain.Session) error) {
	sess := sessionFrom(r.Context())
	if err := apply(sess); err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, wizard.ErrWrongStep) {
			status = http.StatusConflict
		}
		s.logger.InfoContext(r.Context(), "入力を受け付けませんでした", "session_id", sess.ID, "step", sess.Step.String(), "error", err)
		data := s.page(r, sess)
		data.Error = wizard.UserMessage(err)
		data.Value = value
		s.render(w, r, status, data)
		return
	}
	s.saveAndRedirect(w, r, sess)
}

// handleGenerate は上限を確認してから4コマ漫画を生成します。
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := sessionFrom(ctx)
	if sess.Step != domain.StepComic {
		data := s.page(r, sess)
		data.Error = wizard.UserMessage(wizard.ErrWrongStep)
		s.render(w, r, http.StatusConflict, data)
		return
	}

	clientID := usage.ClientID(r)
	if _, err := s.app.Limiter.Check(ctx, clientID, sess); err != nil {
		data := s.page(r, sess)
		data.LimitReached = true
		data.Error = err.Error()
		s.render(w, r, http.StatusTooManyRequests, data)
		return
	}

	comic, err := s.app.Manager.GenerateComic(ctx, sess)
	if err != nil {
		s.logger.ErrorContext(ctx, "漫画の生成に失敗しました", "session_id", sess.ID, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	s.app.Limiter.Record(ctx, clientID, sess)

	if err := s.app.Machine.Complete(sess, comic); err != nil {
		s.logger.ErrorContext(ctx, "生成結果の保存に失敗しました", "session_id", sess.ID, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	s.saveAndRedirect(w, r, sess)
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	s.app.Machine.Back(sess)
	s.saveAndRedirect(w, r, sess)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	s.app.Machine.Reset(sess)
	s.saveAndRedirect(w, r, sess)
}

// handleMarkdown は生成結果を Markdown としてダウンロードさせます。
func (s *Server) handleMarkdown(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if !sess.HasResult() {
		http.Error(w, "아직 만화가 생성되지 않았습니다.", http.StatusNotFound)
		return
	}
	comic := s.comicFor(sess)
	md := s.app.Manager.BuildPublishRunner().BuildMarkdown(comic)
	s.download(w, "comic.md", "text/markdown; charset=utf-8", md)
}

// handlePrompts は外部の画像ツール向けプロンプトをダウンロードさせます。
func (s *Server) handlePrompts(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if !sess.HasResult() {
		http.Error(w, "아직 만화가 생성되지 않았습니다.", http.StatusNotFound)
		return
	}
	comic := s.comicFor(sess)
	pc := s.app.Manager.PanelContext(sess, sess.Weather)
	sheet := s.app.Manager.BuildPublishRunner().PromptSheet(comic, pc)
	s.download(w, "prompts.txt", "text/plain; charset=utf-8", sheet)
}

func (s *Server) comicFor(sess *domain.Session) *domain.Comic {
	comic := domain.ComicFromSession(sess)
	comic.Title = domain.DefaultTitle(s.app.Catalog.EmotionLabel(sess.Emotion), sess.Situation)
	comic.Labels = s.app.Catalog.Labels(sess.Profile, sess.Emotion)
	return comic
}

func (s *Server) page(r *http.Request, sess *domain.Session) *pageData {
	data := newPageData(s.app.Catalog, sess)
	data.Usage = s.app.Limiter.Status(r.Context(), usage.ClientID(r), sess)
	data.ImagesEnabled = s.app.Manager.BuildPanelImageRunner().Enabled()
	if sess.HasResult() {
		comic := s.comicFor(sess)
		data.Title = comic.Title
		data.Panels = panelViews(comic.Panels)
		data.Warnings = comic.Warnings
		if !data.ImagesEnabled {
			pc := s.app.Manager.PanelContext(sess, sess.Weather)
			data.ExternalPrompts = s.app.Manager.BuildPublishRunner().ExternalPrompts(comic, pc)
		}
	}
	return data
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, data *pageData) {
	var buf strings.Builder
	if err := s.tmpl.ExecuteTemplate(&buf, "index.html", data); err != nil {
		s.logger.ErrorContext(r.Context(), "テンプレートの描画に失敗しました", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(buf.String()))
}

func (s *Server) saveAndRedirect(w http.ResponseWriter, r *http.Request, sess *domain.Session) {
	if err := s.saveSession(r.Context(), sess); err != nil {
		s.logger.ErrorContext(r.Context(), "セッションの保存に失敗しました", "session_id", sess.ID, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) download(w http.ResponseWriter, name, contentType, body string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Write([]byte(body))
}
