package db

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post 定义了文章模型。创建后除 UpdatedAt 外不再修改。
type Post struct {
	ID              string     `gorm:"primaryKey;size:36" json:"id"`
	PostTitle       string     `gorm:"type:text" json:"postTitle"`
	Content         string     `gorm:"type:text" json:"content"`
	Audience        string     `gorm:"size:16;index" json:"audience"`
	Tone            string     `gorm:"size:16;index" json:"tone"`
	Readability     string     `gorm:"size:16;index" json:"readability"`
	ReadingTime     int        `json:"readingTime"`
	Author          string     `gorm:"type:text;not null;index" json:"author"`
	AuthorAvatarURL string     `gorm:"type:text;not null" json:"authorAvatarURL"`
	TagRows         []PostTag  `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	FileRows        []PostFile `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`

	Tags          []string `gorm:"-" json:"tags"`
	Files         []string `gorm:"-" json:"files"`
	FeaturedImage string   `gorm:"-" json:"featuredImage,omitempty"`
}

// PostTag stores one tag of a post; Position keeps the submitted order.
type PostTag struct {
	ID       uint   `gorm:"primaryKey" json:"-"`
	PostID   string `gorm:"size:36;not null;index" json:"-"`
	Position int    `gorm:"not null" json:"-"`
	Name     string `gorm:"type:text;not null;index" json:"name"`
}

// PostFile stores one externally hosted file URL of a post.
type PostFile struct {
	ID       uint   `gorm:"primaryKey" json:"-"`
	PostID   string `gorm:"size:36;not null;index" json:"-"`
	Position int    `gorm:"not null" json:"-"`
	URL      string `gorm:"type:text;not null" json:"url"`
}

// BeforeCreate assigns a fresh identifier; callers never choose one.
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// PopulateDerivedFields flattens the child rows into Tags, Files and FeaturedImage.
func (p *Post) PopulateDerivedFields() {
	sort.SliceStable(p.TagRows, func(i, j int) bool { return p.TagRows[i].Position < p.TagRows[j].Position })
	sort.SliceStable(p.FileRows, func(i, j int) bool { return p.FileRows[i].Position < p.FileRows[j].Position })

	p.Tags = make([]string, 0, len(p.TagRows))
	for _, row := range p.TagRows {
		p.Tags = append(p.Tags, row.Name)
	}

	p.Files = make([]string, 0, len(p.FileRows))
	for _, row := range p.FileRows {
		p.Files = append(p.Files, row.URL)
	}

	p.FeaturedImage = ""
	if len(p.Files) > 0 {
		p.FeaturedImage = p.Files[0]
	}
}

// SetTags replaces the tag rows from an ordered list of names.
func (p *Post) SetTags(names []string) {
	p.TagRows = make([]PostTag, 0, len(names))
	for i, name := range names {
		p.TagRows = append(p.TagRows, PostTag{Position: i, Name: name})
	}
}

// SetFiles replaces the file rows from an ordered list of URLs.
func (p *Post) SetFiles(urls []string) {
	p.FileRows = make([]PostFile, 0, len(urls))
	for i, url := range urls {
		p.FileRows = append(p.FileRows, PostFile{Position: i, URL: url})
	}
}
