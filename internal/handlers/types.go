package handlers

import (
	"time"

	"github.com/serroba/page-analyzer/internal/website"
)

// URLBody is the JSON representation of a registered URL.
type URLBody struct {
	ID        int64      `doc:"URL identifier"        example:"1"                   json:"id"`
	Name      string     `doc:"Normalized URL"        example:"https://example.com" json:"name"`
	CreatedAt time.Time  `doc:"Registration time"     json:"createdAt"`
	LastCheck *CheckBody `doc:"Most recent check"     json:"lastCheck,omitempty"`
}

// CheckBody is the JSON representation of a single SEO check.
type CheckBody struct {
	ID          int64     `doc:"Check identifier"          example:"1"              json:"id"`
	URLID       int64     `doc:"Checked URL identifier"    example:"1"              json:"urlId"`
	StatusCode  int       `doc:"HTTP status of the page"   example:"200"            json:"statusCode"`
	Title       string    `doc:"Contents of <title>"       example:"Example Domain" json:"title"`
	H1          string    `doc:"Text of the first <h1>"    example:"Example Domain" json:"h1"`
	Description string    `doc:"Meta description content"  json:"description"`
	CreatedAt   time.Time `doc:"Time the check was stored" json:"createdAt"`
}

// CreateURLRequest is the request body for registering a URL.
type CreateURLRequest struct {
	Body struct {
		URL string `doc:"The URL to register" example:"https://example.com/some/page" json:"url" maxLength:"255"`
	}
}

// CreateURLResponse is the response for a newly registered URL.
type CreateURLResponse struct {
	Location string `doc:"The URL resource location" header:"Location"`
	Body     URLBody
}

// ListURLsResponse lists registered URLs with their latest check.
type ListURLsResponse struct {
	Body struct {
		URLs []URLBody `json:"urls"`
	}
}

// URLIDRequest addresses a single registered URL.
type URLIDRequest struct {
	ID int64 `doc:"URL identifier" example:"1" minimum:"1" path:"id"`
}

// GetURLResponse returns a URL with its full check history.
type GetURLResponse struct {
	Body struct {
		URLBody
		Checks []CheckBody `doc:"Check history, most recent first" json:"checks"`
	}
}

// CreateCheckResponse is the response for a recorded check.
type CreateCheckResponse struct {
	Location string `doc:"The URL resource location" header:"Location"`
	Body     CheckBody
}

func toURLBody(u *website.URL) URLBody {
	return URLBody{
		ID:        u.ID,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
	}
}

func toCheckBody(c *website.Check) CheckBody {
	return CheckBody{
		ID:          c.ID,
		URLID:       c.URLID,
		StatusCode:  c.StatusCode,
		Title:       c.Title,
		H1:          c.H1,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
	}
}
