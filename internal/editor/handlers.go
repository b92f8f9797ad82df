package editor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-quickpost/internal/store"
	"github.com/goliatone/go-quickpost/pkg/checklist"
	"github.com/goliatone/go-quickpost/pkg/inject"
	"github.com/goliatone/go-quickpost/pkg/savehook"
	"github.com/goliatone/go-quickpost/pkg/submission"
	"github.com/goliatone/go-quickpost/pkg/taxonomy"
)

// Native form keys of the quick-post page.
const (
	FormPostID   = "post_ID"
	FormTitle    = "post_title"
	FormContent  = "post_content"
	FormCategory = "post_category[]"
	FormTags     = "tax_input[post_tag]"
)

type pageView struct {
	Action     string            `json:"action"`
	PostID     int64             `json:"postId"`
	Title      string            `json:"title"`
	Content    string            `json:"content"`
	Categories []checklist.Token `json:"categories"`
	Tags       string            `json:"tags"`
	Saved      int64             `json:"saved,omitempty"`
	Head       string            `json:"head"`
	Footer     string            `json:"footer"`
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	var id int64
	if raw := strings.TrimSpace(query.Get("post")); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			http.Error(w, "invalid post id", http.StatusBadRequest)
			return
		}
		id = parsed
	} else {
		draft, err := s.storage.CreateDraft(ctx, s.contentType)
		if err != nil {
			s.fail(w, "create draft", err)
			return
		}
		http.Redirect(w, r, pageURL(draft, 0), http.StatusFound)
		return
	}

	post, err := s.storage.Post(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.fail(w, "load post", err)
		return
	}

	view := pageView{
		Action:  PagePath,
		PostID:  post.ID,
		Title:   post.Title,
		Content: post.Content,
	}
	if saved, err := strconv.ParseInt(query.Get("saved"), 10, 64); err == nil && saved > 0 {
		view.Saved = saved
	}

	view.Categories, err = s.categoryTokens(r, post.ID)
	if err != nil {
		s.fail(w, "load categories", err)
		return
	}
	tags, err := s.storage.Assigned(ctx, post.ID, taxonomy.PostTag)
	if err != nil {
		s.fail(w, "load tags", err)
		return
	}
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, tag.Name)
	}
	view.Tags = strings.Join(names, ",")

	hookCtx := withRequest(ctx, inject.Request{
		ItemID:      post.ID,
		ContentType: post.Type,
		Actor:       s.actor,
	})
	var head, footer bytes.Buffer
	s.actions.Do(hookCtx, HookHead, &head)
	s.actions.Do(hookCtx, HookEnqueue, &head)
	s.actions.Do(hookCtx, HookFooter, &footer)
	s.actions.Do(hookCtx, HookFooterScripts, &footer)
	view.Head = head.String()
	view.Footer = footer.String()

	var page bytes.Buffer
	if _, err := s.templates.RenderTemplate("templates/press-this", view, &page); err != nil {
		s.fail(w, "render page", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := page.WriteTo(w); err != nil {
		s.logger.Debug("page write interrupted", zap.Error(err))
	}
}

func (s *Server) categoryTokens(r *http.Request, postID int64) ([]checklist.Token, error) {
	ctx := r.Context()
	terms, err := s.storage.Terms(ctx, taxonomy.Category)
	if err != nil {
		return nil, err
	}
	assigned, err := s.storage.Assigned(ctx, postID, taxonomy.Category)
	if err != nil {
		return nil, err
	}
	group := checklist.Build(taxonomy.Category, terms, assigned)
	return group.Flatten(), nil
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	id, err := s.Submit(ctx, r.PostForm)
	switch {
	case errors.Is(err, ErrInvalidForm):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, store.ErrNotFound):
		http.NotFound(w, r)
		return
	case err != nil:
		s.fail(w, "save post", err)
		return
	}
	http.Redirect(w, r, pageURL(id, id), http.StatusSeeOther)
}

// ErrInvalidForm is returned by Submit for malformed native fields.
var ErrInvalidForm = errors.New("editor: invalid form")

// Submit runs submitted form values through the save pipeline: the native
// payload is built, passed through the save chain together with the parsed
// submission and persisted.
func (s *Server) Submit(ctx context.Context, form url.Values) (int64, error) {
	payload, err := nativePayload(form)
	if err != nil {
		return 0, err
	}
	req := s.saves.Apply(ctx, savehook.SaveRequest{
		Payload:    payload,
		Submission: submission.Parse(form),
	})

	id, err := s.storage.SavePost(ctx, req.Payload)
	if err != nil {
		return 0, err
	}
	s.logger.Info("post saved",
		zap.Int64("item", id),
		zap.Int("taxonomies", len(req.Payload.TaxInput)))
	return id, nil
}

// nativePayload builds the payload the host editor itself would save: the
// item fields, its categories and its tags. Custom taxonomies only reach the
// payload through the save chain.
func nativePayload(form url.Values) (savehook.Payload, error) {
	var payload savehook.Payload
	if raw := strings.TrimSpace(form.Get(FormPostID)); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 0 {
			return savehook.Payload{}, fmt.Errorf("%w: %s %q", ErrInvalidForm, FormPostID, raw)
		}
		payload.ID = id
	}
	payload.Data = map[string]any{
		store.KeyTitle:   form.Get(FormTitle),
		store.KeyContent: form.Get(FormContent),
	}

	taxInput := make(map[string][]string)
	if _, ok := form[FormCategory]; ok {
		taxInput[taxonomy.Category] = submission.TermList(form[FormCategory]...).Normalize()
	}
	if _, ok := form[FormTags]; ok {
		taxInput[taxonomy.PostTag] = submission.TermString(form.Get(FormTags)).Normalize()
	}
	if len(taxInput) > 0 {
		payload.TaxInput = taxInput
	}
	return payload, nil
}

func pageURL(id, saved int64) string {
	values := url.Values{}
	values.Set("post", strconv.FormatInt(id, 10))
	if saved > 0 {
		values.Set("saved", strconv.FormatInt(saved, 10))
	}
	return PagePath + "?" + values.Encode()
}

func (s *Server) fail(w http.ResponseWriter, action string, err error) {
	s.logger.Error("editor request failed", zap.String("action", action), zap.Error(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
