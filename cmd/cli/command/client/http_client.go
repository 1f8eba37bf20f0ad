package client

// http_client.go = talks to the aquarium REST API for the CLI.

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/maho-na510/aquarium-visit-log/cmd/cli/dto"
	apidto "github.com/maho-na510/aquarium-visit-log/internal/api/dto"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status   int
	Messages []string
}

func (e *APIError) Error() string {
	if len(e.Messages) == 0 {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return strings.Join(e.Messages, "; ")
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// NewHTTPClient expects apiURL to include the /api/v1 prefix.
func NewHTTPClient(apiURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(apiURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *HTTPClient) SetToken(token string) {
	c.token = token
}

// do sends body as JSON and decodes a 2xx answer into out when out is not nil.
func (c *HTTPClient) do(method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(jsonData)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequest(method, target, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var payload dto.ErrorResponse
		if json.NewDecoder(resp.Body).Decode(&payload) == nil {
			if payload.Error != "" {
				apiErr.Messages = append(apiErr.Messages, payload.Error)
			}
			apiErr.Messages = append(apiErr.Messages, payload.Errors...)
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *HTTPClient) Login(request *dto.LoginRequest) (*dto.SessionResponse, error) {
	var result dto.SessionResponse
	if err := c.do(http.MethodPost, "/login", nil, request, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) Register(request *dto.RegisterRequest) (*dto.SessionResponse, error) {
	var result dto.SessionResponse
	if err := c.do(http.MethodPost, "/register", nil, request, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Me returns nil when the token is missing or no longer valid.
func (c *HTTPClient) Me() (*apidto.SessionUser, error) {
	var result dto.MeResponse
	if err := c.do(http.MethodGet, "/me", nil, nil, &result); err != nil {
		return nil, err
	}
	return result.User, nil
}

// Aquariums

func (c *HTTPClient) ListAquariums(query url.Values) (*dto.AquariumList, error) {
	var result dto.AquariumList
	if err := c.do(http.MethodGet, "/aquariums", query, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) SearchAquariums(query url.Values) (*dto.AquariumList, error) {
	var result dto.AquariumList
	if err := c.do(http.MethodGet, "/aquariums/search", query, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) NearbyAquariums(lat, lng, distanceKm float64) (*dto.AquariumList, error) {
	query := url.Values{}
	query.Set("lat", fmt.Sprint(lat))
	query.Set("lng", fmt.Sprint(lng))
	if distanceKm > 0 {
		query.Set("distance", fmt.Sprint(distanceKm))
	}
	var result dto.AquariumList
	if err := c.do(http.MethodGet, "/aquariums/nearby", query, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) GetAquarium(id int64) (*dto.AquariumDetail, error) {
	var result dto.AquariumDetail
	if err := c.do(http.MethodGet, fmt.Sprintf("/aquariums/%d", id), nil, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Rankings

// Ranking fetches one leaderboard, e.g. "most_visited".
func (c *HTTPClient) Ranking(board string, query url.Values) (*dto.RankingResponse, error) {
	var result dto.RankingResponse
	if err := c.do(http.MethodGet, "/rankings/"+board, query, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Wishlist

func (c *HTTPClient) GetWishlist(page int) (*dto.WishlistList, error) {
	query := url.Values{}
	if page > 0 {
		query.Set("page", fmt.Sprint(page))
	}
	var result dto.WishlistList
	if err := c.do(http.MethodGet, "/wishlist_items", query, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) AddToWishlist(request *dto.WishlistRequest) (*dto.WishlistItem, error) {
	var result dto.WishlistItem
	if err := c.do(http.MethodPost, "/wishlist_items", nil, request, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) RemoveFromWishlist(id int64) error {
	return c.do(http.MethodDelete, fmt.Sprintf("/wishlist_items/%d", id), nil, nil, nil)
}
