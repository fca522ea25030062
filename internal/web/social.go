package web

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/justestif/go-spotify-social/internal/db"
)

// uuidParam parses a UUID URL parameter.
func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid %s", errBadRequest, name)
	}
	return id, nil
}

// GetMyProfile returns the caller's profile (GET /api/profiles/me).
func (h *Handlers) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	h.writeProfile(w, r, h.deps.ProfileID)
}

// GetProfile returns any profile (GET /api/profiles/{id}).
func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	h.writeProfile(w, r, chi.URLParam(r, "id"))
}

func (h *Handlers) writeProfile(w http.ResponseWriter, r *http.Request, id string) {
	p, err := h.deps.Profiles.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, h.log, http.StatusOK, p)
}

// UpdateMyProfile edits the caller's profile (PATCH /api/profiles/me).
func (h *Handlers) UpdateMyProfile(w http.ResponseWriter, r *http.Request) {
	var u db.ProfileUpdate
	if err := decodeJSON(r, &u); err != nil {
		writeError(w, h.log, err)
		return
	}
	p, err := h.deps.Profiles.Update(r.Context(), h.deps.ProfileID, u)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, h.log, http.StatusOK, p)
}

// ListFriends lists followed profiles (GET /api/profiles/me/friends).
func (h *Handlers) ListFriends(w http.ResponseWriter, r *http.Request) {
	friends, err := h.deps.Profiles.Friends(r.Context(), h.deps.ProfileID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, h.log, http.StatusOK, friends)
}

// AddFriend follows a profile (PUT /api/profiles/me/friends/{id}).
func (h *Handlers) AddFriend(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Profiles.AddFriend(r.Context(), h.deps.ProfileID, chi.URLParam(r, "id")); err != nil {
		writeError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveFriend unfollows a profile (DELETE /api/profiles/me/friends/{id}).
func (h *Handlers) RemoveFriend(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Profiles.RemoveFriend(r.Context(), h.deps.ProfileID, chi.URLParam(r, "id")); err != nil {
		writeError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListFavorites lists the caller's favorites (GET /api/favorites?type=track).
func (h *Handlers) ListFavorites(w http.ResponseWriter, r *http.Request) {
	var itemType db.ItemType
	if raw := r.URL.Query().Get("type"); raw != "" {
		t, err := db.ParseItemType(raw)
		if err != nil {
			writeError(w, h.log, err)
			return
		}
		itemType = t
	}

	favorites, err := h.deps.Favorites.List(r.Context(), h.deps.ProfileID, itemType)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, h.log, http.StatusOK, favorites)
}

type favoriteRequest struct {
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
}

// AddFavorite saves an item (PUT /api/favorites/{type}/{id}).
func (h *Handlers) AddFavorite(w http.ResponseWriter, r *http.Request) {
	itemType, err := db.ParseItemType(chi.URLParam(r, "type"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	var body favoriteRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, h.log, err)
			return
		}
	}

	f := &db.Favorite{
		UserID:   h.deps.ProfileID,
		ItemType: itemType,
		ItemID:   chi.URLParam(r, "id"),
		Name:     body.Name,
		ImageURL: body.ImageURL,
	}
	if err := h.deps.Favorites.Add(r.Context(), f); err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, h.log, http.StatusOK, f)
}

// RemoveFavorite unsaves an item (DELETE /api/favorites/{type}/{id}).
func (h *Handlers) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	itemType, err := db.ParseItemType(chi.URLParam(r, "type"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if err := h.deps.Favorites.Remove(r.Context(), h.deps.ProfileID, itemType, chi.URLParam(r, "id")); err != nil {
		writeError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListReviews lists reviews of an item (?itemType=&itemId=) or by a user (?userId=).
func (h *Handlers) ListReviews(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		reviews []db.Review
		err     error
	)
	switch {
	case q.Get("userId") != "":
		reviews, err = h.deps.Reviews.ListForUser(r.Context(), q.Get("userId"))
	case q.Get("itemId") != "":
		var itemType db.ItemType
		itemType, err = db.ParseItemType(q.Get("itemType"))
		if err == nil {
			reviews, err = h.deps.Reviews.ListForItem(r.Context(), itemType, q.Get("itemId"))
		}
	default:
		err = fmt.Errorf("%w: userId or itemType and itemId required", errBadRequest)
	}
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, h.log, http.StatusOK, reviews)
}

type reviewRequest struct {
	ItemType db.ItemType `json:"itemType"`
	ItemID   string      `json:"itemId"`
	Rating   int         `json:"rating"`
	Body     string      `json:"body"`
}

// CreateReview writes a review as the caller (POST /api/reviews).
func (h *Handlers) CreateReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}

	rv := &db.Review{
		UserID:   h.deps.ProfileID,
		ItemType: req.ItemType,
		ItemID:   req.ItemID,
		Rating:   req.Rating,
		Body:     req.Body,
	}
	if err := h.deps.Reviews.Create(r.Context(), rv); err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, h.log, http.StatusCreated, rv)
}

// GetReview returns one review (GET /api/reviews/{id}).
func (h *Handlers) GetReview(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	rv, err := h.deps.Reviews.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, h.log, http.StatusOK, rv)
}

type reviewUpdateRequest struct {
	Rating int    `json:"rating"`
	Body   string `json:"body"`
}

// UpdateReview edits one of the caller's reviews (PUT /api/reviews/{id}).
func (h *Handlers) UpdateReview(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	var req reviewUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}

	rv := &db.Review{ID: id, UserID: h.deps.ProfileID, Rating: req.Rating, Body: req.Body}
	if err := h.deps.Reviews.Update(r.Context(), rv); err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, h.log, http.StatusOK, rv)
}

// DeleteReview removes one of the caller's reviews (DELETE /api/reviews/{id}).
func (h *Handlers) DeleteReview(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if err := h.deps.Reviews.Delete(r.Context(), id, h.deps.ProfileID); err != nil {
		writeError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListComments lists a review's comments (GET /api/reviews/{id}/comments).
func (h *Handlers) ListComments(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	comments, err := h.deps.Comments.ListForReview(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, h.log, http.StatusOK, comments)
}

type commentRequest struct {
	Body string `json:"body"`
}

// CreateComment comments on a review (POST /api/reviews/{id}/comments).
func (h *Handlers) CreateComment(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}

	c := &db.Comment{ReviewID: id, UserID: h.deps.ProfileID, Body: req.Body}
	if err := h.deps.Comments.Create(r.Context(), c); err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, h.log, http.StatusCreated, c)
}

// DeleteComment removes one of the caller's comments (DELETE /api/comments/{id}).
func (h *Handlers) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if err := h.deps.Comments.Delete(r.Context(), id, h.deps.ProfileID); err != nil {
		writeError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
