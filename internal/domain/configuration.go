package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// 发布状态
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Configuration 站点配置领域模型（对应 configurations 表 + data JSONB 文档）
// 一个租户一份配置；发布状态只能由部署流程修改
type Configuration struct {
	ID      string `json:"id"`
	OwnerID string `json:"ownerId"`

	// 基本信息
	BusinessName string `json:"businessName"`
	BusinessType string `json:"businessType,omitempty"`
	Location     string `json:"location,omitempty"`
	Description  string `json:"description,omitempty"` // markdown 文本

	// 设计
	Template        string         `json:"template,omitempty"`
	PrimaryColor    string         `json:"primaryColor,omitempty"`
	SecondaryColor  string         `json:"secondaryColor,omitempty"`
	BackgroundColor string         `json:"backgroundColor,omitempty"`
	TextColor       string         `json:"textColor,omitempty"`
	PriceColor      string         `json:"priceColor,omitempty"`
	FontFamily      string         `json:"fontFamily,omitempty"`
	FontSize        string         `json:"fontSize,omitempty"` // small | medium | large | CSS length
	Header          HeaderOverride `json:"headerStyle,omitempty"`

	// 内容
	Categories    Categories     `json:"categories,omitempty"`
	MenuItems     []MenuItem     `json:"menuItems,omitempty"`
	Gallery       []Image        `json:"gallery,omitempty"`
	OpeningHours  OpeningHours   `json:"openingHours,omitempty"`
	SelectedPages []string       `json:"selectedPages,omitempty"`
	Contact       ContactMethods `json:"contactMethods,omitempty"`

	// 发布状态
	Status           string     `json:"status"`
	PublishedAddress string     `json:"publishedAddress,omitempty"`
	PublishedAt      *time.Time `json:"publishedAt,omitempty"`
	CustomDomain     string     `json:"customDomain,omitempty"`

	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// IsPublished 是否已发布
func (c *Configuration) IsPublished() bool {
	return c.Status == StatusPublished && c.PublishedAddress != ""
}

// HeaderOverride 页眉样式覆盖
type HeaderOverride struct {
	FontColor       string `json:"fontColor,omitempty"`
	FontSize        string `json:"fontSize,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
}

// MenuItem 菜单/商品条目
type MenuItem struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       Price  `json:"price,omitempty"`
	Category    string `json:"category,omitempty"`
	Image       *Image `json:"image,omitempty"`
}

// Price is kept as display text. Decodes from a JSON string or number.
type Price string

func (p *Price) UnmarshalJSON(data []byte) error {
	if strings.TrimSpace(string(data)) == "null" {
		*p = ""
		return nil
	}
	v, ok := scalarString(data)
	if !ok {
		return fmt.Errorf("price must be a string or a number, got %s", data)
	}
	*p = Price(strings.TrimSpace(v))
	return nil
}

// Categories keeps insertion order and drops duplicates and blanks on decode.
type Categories []string

func (c *Categories) UnmarshalJSON(data []byte) error {
	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = NewCategories(raw...)
	return nil
}

// NewCategories 构造有序去重的分类列表
func NewCategories(values ...string) Categories {
	seen := make(map[string]struct{}, len(values))
	out := make(Categories, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Image is either a direct address or embedded data. Decodes from a bare string
// or from an object carrying url/src and alt.
type Image struct {
	Source string `json:"url"`
	Alt    string `json:"alt,omitempty"`
}

func (i *Image) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*i = Image{Source: s}
		return nil
	}
	var obj struct {
		URL  string `json:"url"`
		Src  string `json:"src"`
		Data string `json:"data"`
		Alt  string `json:"alt"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	src := obj.URL
	if src == "" {
		src = obj.Src
	}
	if src == "" {
		src = obj.Data
	}
	*i = Image{Source: src, Alt: obj.Alt}
	return nil
}

// DayHours 单日营业时间
type DayHours struct {
	Open   string `json:"open,omitempty"`
	Close  string `json:"close,omitempty"`
	Closed bool   `json:"closed,omitempty"`
}

// OpeningHours 营业时间（key 为星期，如 "monday"）
type OpeningHours map[string]DayHours

// Weekdays 固定的展示顺序
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}
