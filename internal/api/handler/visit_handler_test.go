package handler_test

import (
	"net/http"
	"testing"

	"github.com/maho-na510/aquarium-visit-log/internal/api/dto"
	"github.com/maho-na510/aquarium-visit-log/internal/api/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestVisitHandler_RequiresSession(t *testing.T) {
	r, _ := setupRouter(t)

	rec := perform(r, http.MethodGet, "/api/v1/visits", "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "ログインが必要です", decode(t, rec)["error"])
}

func TestVisitHandler_List(t *testing.T) {
	r, m := setupRouter(t)

	m.visits.On("List", mock.Anything, memberUser, mock.MatchedBy(func(p service.VisitListParams) bool {
		return p.AquariumID != nil && *p.AquariumID == 3 &&
			p.Year != nil && *p.Year == 2024 &&
			p.Month != nil && *p.Month == 5 &&
			p.Query == "ペンギン" && p.Sort == "rating"
	})).Return(&service.VisitPage{Visits: []dto.VisitListItem{}, Pagination: dto.NewPagination(1, 20, 0)}, nil)

	rec := perform(r, http.MethodGet,
		"/api/v1/visits?aquarium_id=3&year=2024&month=5&q=%E3%83%9A%E3%83%B3%E3%82%AE%E3%83%B3&sort=rating",
		"member-token", nil, "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Empty(t, body["visits"])
	assert.Equal(t, float64(0), body["pagination"].(map[string]any)["total_count"])
}

func TestVisitHandler_CreateJSON(t *testing.T) {
	r, m := setupRouter(t)

	m.visits.On("Create", mock.Anything, memberUser, mock.MatchedBy(func(in dto.VisitInput) bool {
		return *in.AquariumID == 3 && *in.VisitedAt == "2024-05-03" && *in.Rating == 5 &&
			len(in.GoodExhibitsList) == 2
	}), service.VisitMediaUploads{}).Return(&dto.VisitDetail{ID: 11, Memo: "楽しかった"}, nil)

	rec := performJSON(r, http.MethodPost, "/api/v1/visits", "member-token", map[string]any{
		"visit": map[string]any{
			"aquarium_id":        3,
			"visited_at":         "2024-05-03",
			"rating":             5,
			"good_exhibits_list": []string{"ペンギン", "クラゲ"},
		},
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "楽しかった", decode(t, rec)["memo"])
}

func TestVisitHandler_CreateMultipart(t *testing.T) {
	r, m := setupRouter(t)

	m.visits.On("Create", mock.Anything, memberUser, mock.MatchedBy(func(in dto.VisitInput) bool {
		return in.AquariumID != nil && *in.AquariumID == 3 &&
			in.VisitedAt != nil && *in.VisitedAt == "2024-05-03" &&
			in.Weather != nil && *in.Weather == "晴れ" &&
			in.Rating != nil && *in.Rating == 4 &&
			in.Memo == nil &&
			len(in.GoodExhibitsList) == 1 && in.GoodExhibitsList[0] == "イルカショー"
	}), mock.MatchedBy(func(files service.VisitMediaUploads) bool {
		return len(files.Photos) == 2 && len(files.Videos) == 1 && files.Videos[0].Filename == "show.mp4"
	})).Return(&dto.VisitDetail{ID: 12, SkippedPhotos: 0}, nil)

	body, contentType := multipartBody(t, map[string][]string{
		"visit[aquarium_id]":          {"3"},
		"visit[visited_at]":           {"2024-05-03"},
		"visit[weather]":              {"晴れ"},
		"visit[rating]":               {"4"},
		"visit[good_exhibits_list][]": {"イルカショー"},
	}, [][2]string{
		{"photos[]", "a.jpg"},
		{"photos[]", "b.jpg"},
		{"videos[]", "show.mp4"},
	})
	rec := perform(r, http.MethodPost, "/api/v1/visits", "member-token", body, contentType)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, float64(12), decode(t, rec)["id"])
}

func TestVisitHandler_CreateValidation(t *testing.T) {
	r, m := setupRouter(t)

	m.visits.On("Create", mock.Anything, memberUser, mock.Anything, mock.Anything).
		Return(nil, &service.ValidationError{Messages: []string{"Visited at can't be blank"}})

	rec := performJSON(r, http.MethodPost, "/api/v1/visits", "member-token", map[string]any{"visit": map[string]any{}})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"errors": ["Visited at can't be blank"]}`, rec.Body.String())
}

func TestVisitHandler_CreateRatingOutOfRange(t *testing.T) {
	r, m := setupRouter(t)

	rec := performJSON(r, http.MethodPost, "/api/v1/visits", "member-token", map[string]any{
		"visit": map[string]any{"aquarium_id": 3, "visited_at": "2024-05-03", "rating": 9},
	})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"errors": ["Rating is not included in the list"]}`, rec.Body.String())
	m.visits.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestVisitHandler_NotOwner(t *testing.T) {
	r, m := setupRouter(t)

	m.visits.On("Get", mock.Anything, memberUser, int64(4)).Return(nil, service.ErrForbidden)
	m.visits.On("Delete", mock.Anything, memberUser, int64(4)).Return(service.ErrForbidden)

	rec := perform(r, http.MethodGet, "/api/v1/visits/4", "member-token", nil, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "権限がありません", decode(t, rec)["error"])

	rec = perform(r, http.MethodDelete, "/api/v1/visits/4", "member-token", nil, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestVisitHandler_UploadMedia(t *testing.T) {
	r, m := setupRouter(t)

	m.visits.On("UploadMedia", mock.Anything, memberUser, int64(4), mock.MatchedBy(func(files service.VisitMediaUploads) bool {
		return len(files.Photos) == 1 && files.Photos[0].Filename == "a.jpg" && len(files.Videos) == 0
	})).Return(&dto.VisitDetail{ID: 4, SkippedPhotos: 1}, nil)

	body, contentType := multipartBody(t, nil, [][2]string{{"photos[0]", "a.jpg"}})
	rec := perform(r, http.MethodPost, "/api/v1/visits/4/upload_photos", "member-token", body, contentType)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decode(t, rec)["skipped_photos"])
}
