package server

import (
	"net/http"

	"EchoWave/core/events"
	"EchoWave/model"
)

// CreateLikeHandler likes a track. Liking an already-liked track returns
// the existing like.
func (h *APIHandler) CreateLikeHandler(w http.ResponseWriter, r *http.Request) {
	var req model.InsertLike
	if !decodeAndValidate(w, r, &req) {
		return
	}

	like, err := h.content.Likes.CreateLike(&model.Like{
		UserID:  req.UserID,
		TrackID: req.TrackID,
	})
	if err != nil {
		respondInternalError(w, err)
		return
	}

	if h.hub != nil {
		h.hub.Publish(events.Event{
			Type:    events.EventTrackLiked,
			UserID:  like.UserID,
			TrackID: like.TrackID,
		})
	}
	respondJSON(w, http.StatusCreated, like)
}

// DeleteLikeHandler removes a like. Removing an absent like is a no-op.
func (h *APIHandler) DeleteLikeHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	trackID, err := pathID(r, "trackId")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.content.Likes.DeleteLike(userID, trackID); err != nil {
		respondInternalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetTrackLikesHandler lists the likes on a track.
func (h *APIHandler) GetTrackLikesHandler(w http.ResponseWriter, r *http.Request) {
	trackID, err := pathID(r, "trackId")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	likes, err := h.content.Likes.GetLikesByTrackID(trackID)
	if err != nil {
		respondInternalError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, likes)
}

// GetUserLikesHandler lists a user's likes.
func (h *APIHandler) GetUserLikesHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	likes, err := h.content.Likes.GetLikesByUserID(userID)
	if err != nil {
		respondInternalError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, likes)
}

// CheckLikeHandler reports whether a user has liked a track.
func (h *APIHandler) CheckLikeHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	trackID, err := pathID(r, "trackId")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	liked, err := h.content.Likes.IsTrackLiked(userID, trackID)
	if err != nil {
		respondInternalError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"liked": liked})
}

// CreateCommentHandler adds a comment to a track.
func (h *APIHandler) CreateCommentHandler(w http.ResponseWriter, r *http.Request) {
	var req model.InsertComment
	if !decodeAndValidate(w, r, &req) {
		return
	}

	comment := &model.Comment{
		UserID:  req.UserID,
		TrackID: req.TrackID,
		Content: req.Content,
	}
	if _, err := h.content.Comments.CreateComment(comment); err != nil {
		respondInternalError(w, err)
		return
	}

	if h.hub != nil {
		h.hub.Publish(events.Event{
			Type:    events.EventCommentAdded,
			UserID:  comment.UserID,
			TrackID: comment.TrackID,
		})
	}
	respondJSON(w, http.StatusCreated, comment)
}

// GetTrackCommentsHandler lists a track's comments, newest first.
func (h *APIHandler) GetTrackCommentsHandler(w http.ResponseWriter, r *http.Request) {
	trackID, err := pathID(r, "trackId")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	comments, err := h.content.Comments.GetCommentsByTrackID(trackID)
	if err != nil {
		respondInternalError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, comments)
}

// DeleteCommentHandler removes a comment.
func (h *APIHandler) DeleteCommentHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.content.Comments.DeleteComment(id); err != nil {
		respondInternalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateFollowHandler makes one user follow another. Self-follow is
// rejected here; the store does not enforce it.
func (h *APIHandler) CreateFollowHandler(w http.ResponseWriter, r *http.Request) {
	var req model.InsertFollow
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if req.FollowerID == req.FollowedID {
		respondError(w, http.StatusBadRequest, "Cannot follow yourself")
		return
	}

	follow, err := h.content.Follows.CreateFollow(&model.Follow{
		FollowerID: req.FollowerID,
		FollowedID: req.FollowedID,
	})
	if err != nil {
		respondInternalError(w, err)
		return
	}

	if h.hub != nil {
		h.hub.Publish(events.Event{
			Type:   events.EventUserFollowed,
			UserID: follow.FollowerID,
		})
	}
	respondJSON(w, http.StatusCreated, follow)
}

// DeleteFollowHandler removes a follow relationship.
func (h *APIHandler) DeleteFollowHandler(w http.ResponseWriter, r *http.Request) {
	followerID, err := pathID(r, "followerId")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	followedID, err := pathID(r, "followedId")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.content.Follows.DeleteFollow(followerID, followedID); err != nil {
		respondInternalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetFollowingHandler lists who a user follows.
func (h *APIHandler) GetFollowingHandler(w http.ResponseWriter, r *http.Request) {
	followerID, err := pathID(r, "followerId")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	follows, err := h.content.Follows.GetFollowsByFollowerID(followerID)
	if err != nil {
		respondInternalError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, follows)
}

// GetFollowersHandler lists a user's followers.
func (h *APIHandler) GetFollowersHandler(w http.ResponseWriter, r *http.Request) {
	followedID, err := pathID(r, "followedId")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	follows, err := h.content.Follows.GetFollowsByFollowedID(followedID)
	if err != nil {
		respondInternalError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, follows)
}

// CheckFollowHandler reports whether one user follows another.
func (h *APIHandler) CheckFollowHandler(w http.ResponseWriter, r *http.Request) {
	followerID, err := pathID(r, "followerId")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	followedID, err := pathID(r, "followedId")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	following, err := h.content.Follows.IsFollowing(followerID, followedID)
	if err != nil {
		respondInternalError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"following": following})
}
