package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/boardsvc/internal/apperror"
	"github.com/sakif/boardsvc/internal/service"
	"github.com/sakif/boardsvc/internal/session"
)

// BoardHandler serves the board pages and their JSON twins.
//
//	GET /board/list?page=&size=    → list page
//	GET /board?idx=                → detail form (blank for a missing idx)
//	GET /api/boards?page=&size=    → JSON page
//	GET /api/boards/{id}           → JSON board
type BoardHandler struct {
	boards *service.BoardService
	views  *Views
	users  userResolver
	logger *slog.Logger
}

func NewBoardHandler(
	boards *service.BoardService,
	resolver *service.IdentityResolver,
	sessions *session.Manager,
	views *Views,
	logger *slog.Logger,
) *BoardHandler {
	return &BoardHandler{
		boards: boards,
		views:  views,
		users:  userResolver{resolver: resolver, sessions: sessions},
		logger: logger,
	}
}

// HandleList renders one page of boards. It resolves the current social user
// first, so a fresh provider login is linked to a local user here at the latest.
func (h *BoardHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	user, err := h.users.currentUser(w, r, sess)
	if err != nil {
		h.views.renderError(w, r, http.StatusInternalServerError, err)
		return
	}

	page, err := h.boards.ListBoards(r.Context(), pageRequest(r))
	if err != nil {
		h.views.renderError(w, r, http.StatusInternalServerError, err)
		return
	}

	h.views.render(w, r, http.StatusOK, viewBoardList, viewData{
		Title: "게시판 목록",
		User:  user,
		Page:  page,
	})
}

// HandleForm renders the detail form. A missing, malformed or unknown idx
// renders the empty form used for a new post.
func (h *BoardHandler) HandleForm(w http.ResponseWriter, r *http.Request) {
	idx, _ := strconv.ParseInt(r.URL.Query().Get("idx"), 10, 64)

	board, err := h.boards.GetBoard(r.Context(), idx)
	if err != nil {
		h.views.renderError(w, r, http.StatusInternalServerError, err)
		return
	}
	owner, err := h.boards.Owner(r.Context(), board)
	if err != nil {
		// The form is still useful without the author line.
		h.logger.WarnContext(r.Context(), "loading board owner",
			slog.Int64("board_id", board.ID),
			slog.String("error", err.Error()),
		)
	}

	h.views.render(w, r, http.StatusOK, viewBoardForm, viewData{
		Title: "게시글",
		User:  currentSession(r).User,
		Board: board,
		Owner: owner,
	})
}

func (h *BoardHandler) HandleAPIList(w http.ResponseWriter, r *http.Request) {
	page, err := h.boards.ListBoards(r.Context(), pageRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// HandleAPIGet returns the board or, for an unknown id, an empty board with 200.
func (h *BoardHandler) HandleAPIGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, apperror.ValidationFailed("id", "board id must be an integer"))
		return
	}

	board, err := h.boards.GetBoard(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

// HandleKakao is only reachable with ROLE_KAKAO.
func HandleKakao(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("kakao"))
}

// HandleRoot sends visitors to the board list.
func HandleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/board/list", http.StatusFound)
}
