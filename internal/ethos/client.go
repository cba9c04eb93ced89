package ethos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const clientHeader = "ethos-telegram-agent"

var (
	// ErrNotFound means the API answered but had no data for the query.
	ErrNotFound = errors.New("ethos: not found")
	// ErrAPI means the API answered with ok=false or a non-2xx status.
	ErrAPI = errors.New("ethos: api error")
)

// Client talks to the Ethos Network reputation API.
type Client struct {
	base  string
	httpc *http.Client
}

func NewClient(base string) *Client {
	return &Client{
		base:  base,
		httpc: &http.Client{Timeout: 5 * time.Second},
	}
}

// envelope is the {ok, data} wrapper every v1 endpoint uses.
type envelope struct {
	OK   bool            `json:"ok"`
	Data json.RawMessage `json:"data"`
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-Ethos-Client", clientHeader)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrAPI, resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if !env.OK {
		return ErrAPI
	}
	return json.Unmarshal(env.Data, out)
}

// ProfileID resolves a userkey to its Ethos profile id via the user stats
// endpoint. Users without a full profile have no profile id.
func (c *Client) ProfileID(ctx context.Context, userkey string) (int64, error) {
	var data struct {
		ProfileID int64 `json:"profileId"`
	}
	if err := c.get(ctx, "/api/v1/users/"+url.PathEscape(userkey)+"/stats", &data); err != nil {
		return 0, err
	}
	if data.ProfileID == 0 {
		return 0, ErrNotFound
	}
	return data.ProfileID, nil
}

// DailyContributionStatus reports whether the profile can still generate
// daily contributions. False means today's tasks are already completed.
func (c *Client) DailyContributionStatus(ctx context.Context, profileID int64) (bool, error) {
	var data struct {
		CanGenerateDailyContributions bool `json:"canGenerateDailyContributions"`
	}
	path := fmt.Sprintf("/api/v1/contributions/profileId:%d/stats", profileID)
	if err := c.get(ctx, path, &data); err != nil {
		return false, err
	}
	return data.CanGenerateDailyContributions, nil
}

// Score fetches the credibility score for a userkey.
func (c *Client) Score(ctx context.Context, userkey string) (int, error) {
	var data struct {
		Score int `json:"score"`
	}
	if err := c.get(ctx, "/api/v1/score/"+url.PathEscape(userkey), &data); err != nil {
		return 0, err
	}
	return data.Score, nil
}

// UserStats holds the profile overview shown by /profile.
type UserStats struct {
	Name      string `json:"name"`
	ProfileID int64  `json:"profileId"`
	Reviews   struct {
		Received                 int     `json:"received"`
		PositiveReviewCount      int     `json:"positiveReviewCount"`
		NegativeReviewCount      int     `json:"negativeReviewCount"`
		NeutralReviewCount       int     `json:"neutralReviewCount"`
		PositiveReviewPercentage float64 `json:"positiveReviewPercentage"`
	} `json:"reviews"`
	Vouches struct {
		Balance struct {
			Received  float64 `json:"received"`
			Deposited float64 `json:"deposited"`
		} `json:"balance"`
		Count struct {
			Received  int `json:"received"`
			Deposited int `json:"deposited"`
		} `json:"count"`
	} `json:"vouches"`
	Slashes struct {
		Count     int  `json:"count"`
		OpenSlash bool `json:"openSlash"`
	} `json:"slashes"`
}

func (c *Client) UserStats(ctx context.Context, userkey string) (*UserStats, error) {
	var data UserStats
	if err := c.get(ctx, "/api/v1/users/"+url.PathEscape(userkey)+"/stats", &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// SearchDisplayName looks up a human-readable name for free-form input.
func (c *Client) SearchDisplayName(ctx context.Context, query string) (string, error) {
	var data struct {
		Values []struct {
			Name string `json:"name"`
		} `json:"values"`
	}
	if err := c.get(ctx, "/api/v1/search?query="+url.QueryEscape(query)+"&limit=2", &data); err != nil {
		return "", err
	}
	if len(data.Values) == 0 || data.Values[0].Name == "" {
		return "", ErrNotFound
	}
	return data.Values[0].Name, nil
}
