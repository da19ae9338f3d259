package publishing

import (
	"strings"

	"tradekeep/internal/content"
	"tradekeep/internal/platform"
)

// TwitterCharLimit Twitter/X 正文硬上限（按 rune 计数）
const TwitterCharLimit = 280

// ellipsis 截断标记
const ellipsis = "…"

// instagramSeparator 图文帖正文与话题标签之间的视觉分隔
const instagramSeparator = "·\n·\n·"

// FormatOptions 格式化选项
type FormatOptions struct {
	SuppressHashtags bool `json:"suppress_hashtags"`
}

// 品牌支柱到话题标签的映射，未识别的支柱使用通用标签
var pillarHashtags = map[string]string{
	"market-insight": "#MarketInsight #Trading #TradeKeep",
	"education":      "#TradingEducation #LearnToTrade #TradeKeep",
	"community":      "#TradingCommunity #TradeKeep",
	"product-update": "#TradeKeep #ProductUpdate",
	"psychology":     "#TradingPsychology #TradeKeep",
}

const genericHashtags = "#Trading #TradeKeep"

// HashtagsFor 按品牌支柱查找话题标签，纯查表，永不失败
func HashtagsFor(brandPillar string) string {
	if tags, ok := pillarHashtags[strings.ToLower(strings.TrimSpace(brandPillar))]; ok {
		return tags
	}
	return genericHashtags
}

// Format 将内容格式化为目标平台的帖子正文
// 纯函数：相同输入永远产生相同输出
func Format(item *content.Item, platformName string, opts FormatOptions) string {
	switch platformName {
	case platform.PlatformTwitter:
		return formatShortForm(item, opts)
	case platform.PlatformInstagram:
		return formatVisual(item, opts)
	default:
		// LinkedIn、邮件等长文平台
		return formatLongForm(item, opts)
	}
}

// formatShortForm 短文平台：标题优先，正文按剩余空间截断
// 先为话题标签后缀预留空间，总长度严格不超过 280 个 rune
func formatShortForm(item *content.Item, opts FormatOptions) string {
	suffix := ""
	if !opts.SuppressHashtags {
		suffix = "\n\n" + HashtagsFor(item.BrandPillar)
	}

	avail := TwitterCharLimit - runeLen(suffix)
	if avail < 1 {
		return truncateRunes(suffix, TwitterCharLimit)
	}

	text := item.Title
	if item.Body != "" {
		full := item.Title + "\n\n" + item.Body
		if runeLen(full) <= avail {
			text = full
		} else {
			// 标题 + 分隔 + 截断标记之外还有空间时才追加正文
			room := avail - runeLen(item.Title) - 2 - runeLen(ellipsis)
			if room > 0 {
				text = item.Title + "\n\n" + truncateRunes(item.Body, room) + ellipsis
			}
		}
	}

	// 标题本身超限时也要守住硬上限
	if runeLen(text) > avail {
		text = truncateRunes(text, avail-runeLen(ellipsis)) + ellipsis
	}

	return text + suffix
}

// formatLongForm 长文平台：标题 + 完整正文，可选话题标签后缀
func formatLongForm(item *content.Item, opts FormatOptions) string {
	var b strings.Builder
	b.WriteString(item.Title)
	if item.Body != "" {
		b.WriteString("\n\n")
		b.WriteString(item.Body)
	}
	if !opts.SuppressHashtags {
		b.WriteString("\n\n")
		b.WriteString(HashtagsFor(item.BrandPillar))
	}
	return b.String()
}

// formatVisual 图文平台：标题 + 正文 + 视觉分隔 + 话题标签
func formatVisual(item *content.Item, opts FormatOptions) string {
	var b strings.Builder
	b.WriteString(item.Title)
	if item.Body != "" {
		b.WriteString("\n\n")
		b.WriteString(item.Body)
	}
	if !opts.SuppressHashtags {
		b.WriteString("\n\n")
		b.WriteString(instagramSeparator)
		b.WriteString("\n\n")
		b.WriteString(HashtagsFor(item.BrandPillar))
	}
	return b.String()
}

func runeLen(s string) int {
	return len([]rune(s))
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
