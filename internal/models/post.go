package models

import (
	"time"
)

// Content platforms
const (
	PlatformLinkedIn   = "linkedin"
	PlatformTwitter    = "twitter"
	PlatformNewsletter = "newsletter"
	PlatformBlog       = "blog"
	PlatformTranscript = "transcript"
)

// Platforms lists the content platforms in display order.
var Platforms = []string{
	PlatformLinkedIn,
	PlatformTwitter,
	PlatformNewsletter,
	PlatformBlog,
	PlatformTranscript,
}

// Known publication statuses; anything else is reported as unknown.
const (
	PostStatusPublished = "published"
	PostStatusDraft     = "draft"
	PostStatusUnknown   = "unknown"
)

// Post is one generated content entry
type Post struct {
	ID           string    `json:"id" db:"id" gorm:"primaryKey;type:varchar(36)"`
	AuthorName   string    `json:"authorName" db:"author_name" gorm:"type:varchar(255)"`
	AuthorEmail  string    `json:"authorEmail" db:"author_email" gorm:"type:varchar(320)"`
	Platform     string    `json:"platform" db:"platform" gorm:"type:varchar(32);index"`
	LinkedInPost string    `json:"linkedinPost,omitempty" db:"linkedin_post" gorm:"type:text"`
	TwitterPost  string    `json:"twitterPost,omitempty" db:"twitter_post" gorm:"type:text"`
	Newsletter   string    `json:"newsletter,omitempty" db:"newsletter" gorm:"type:text"`
	BlogPost     string    `json:"blogPost,omitempty" db:"blog_post" gorm:"type:text"`
	Transcript   string    `json:"transcript,omitempty" db:"transcript" gorm:"type:text"`
	Status       string    `json:"status" db:"status" gorm:"type:varchar(32)"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at" gorm:"index"`
}

// TableName sets the storage table name
func (Post) TableName() string { return "posts" }

// Body returns the text generated for a platform, empty when absent.
func (p *Post) Body(platform string) string {
	switch platform {
	case PlatformLinkedIn:
		return p.LinkedInPost
	case PlatformTwitter:
		return p.TwitterPost
	case PlatformNewsletter:
		return p.Newsletter
	case PlatformBlog:
		return p.BlogPost
	case PlatformTranscript:
		return p.Transcript
	default:
		return ""
	}
}

// AvailableBodies lists the platforms that carry a non-empty body.
func (p *Post) AvailableBodies() []string {
	var out []string
	for _, platform := range Platforms {
		if p.Body(platform) != "" {
			out = append(out, platform)
		}
	}
	return out
}

// StatusLabel folds the free-text status onto the two known values.
func (p *Post) StatusLabel() string {
	switch p.Status {
	case PostStatusPublished, PostStatusDraft:
		return p.Status
	default:
		return PostStatusUnknown
	}
}

// PostFilter narrows the content library listing
type PostFilter struct {
	Platform string `form:"platform"`
	Status   string `form:"status"`
}

// Matches reports whether the post passes the filter.
func (f PostFilter) Matches(p *Post) bool {
	if f.Platform != "" && f.Platform != FilterAll && p.Platform != f.Platform {
		return false
	}
	if f.Status != "" && f.Status != FilterAll && p.StatusLabel() != f.Status {
		return false
	}
	return true
}
