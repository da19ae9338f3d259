package publishing

import (
	"strings"
	"testing"

	"tradekeep/internal/content"
	"tradekeep/internal/platform"

	"github.com/stretchr/testify/assert"
)

func TestHashtagsFor(t *testing.T) {
	assert.Equal(t, "#MarketInsight #Trading #TradeKeep", HashtagsFor("market-insight"))
	assert.Equal(t, "#TradingPsychology #TradeKeep", HashtagsFor("psychology"))

	// 大小写与首尾空白不敏感
	assert.Equal(t, "#TradingEducation #LearnToTrade #TradeKeep", HashtagsFor("  Education "))

	// 未识别的支柱回落到通用标签
	assert.Equal(t, genericHashtags, HashtagsFor("astrology"))
	assert.Equal(t, genericHashtags, HashtagsFor(""))
}

func TestTwitterFormatNeverExceedsLimit(t *testing.T) {
	cases := []struct {
		name string
		item content.Item
	}{
		{"短内容", content.Item{Title: "市场速览", Body: "今日大盘震荡整理。", BrandPillar: "market-insight"}},
		{"超长正文", content.Item{Title: "周度市场观察", Body: strings.Repeat("多头与空头在关键位反复拉锯。", 60), BrandPillar: "market-insight"}},
		{"超长标题", content.Item{Title: strings.Repeat("非常长的标题", 80), Body: "正文", BrandPillar: "education"}},
		{"空正文", content.Item{Title: "只有标题", BrandPillar: "community"}},
		{"多字节字符", content.Item{Title: "日本語タイトル🚀", Body: strings.Repeat("絵文字と漢字の混在テキスト📈", 40), BrandPillar: "psychology"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			text := Format(&tc.item, platform.PlatformTwitter, FormatOptions{})
			assert.LessOrEqual(t, len([]rune(text)), TwitterCharLimit,
				"实际长度 %d runes", len([]rune(text)))
			assert.Contains(t, text, "#TradeKeep")
		})
	}
}

func TestTwitterFormatTruncatesBodyWithEllipsis(t *testing.T) {
	item := &content.Item{
		Title:       "周度市场观察",
		Body:        strings.Repeat("行情分析", 200),
		BrandPillar: "market-insight",
	}
	text := Format(item, platform.PlatformTwitter, FormatOptions{})

	assert.True(t, strings.HasPrefix(text, "周度市场观察\n\n"))
	assert.Contains(t, text, ellipsis)
	assert.True(t, strings.HasSuffix(text, HashtagsFor("market-insight")))
}

func TestTwitterFormatKeepsShortContentIntact(t *testing.T) {
	item := &content.Item{Title: "标题", Body: "正文", BrandPillar: "education"}
	text := Format(item, platform.PlatformTwitter, FormatOptions{})
	assert.Equal(t, "标题\n\n正文\n\n"+HashtagsFor("education"), text)
}

func TestFormatIsDeterministic(t *testing.T) {
	item := &content.Item{
		Title:       "周度市场观察",
		Body:        strings.Repeat("行情分析", 100),
		BrandPillar: "market-insight",
	}
	for _, name := range []string{platform.PlatformTwitter, platform.PlatformLinkedIn, platform.PlatformInstagram} {
		first := Format(item, name, FormatOptions{})
		second := Format(item, name, FormatOptions{})
		assert.Equal(t, first, second, "平台 %s 两次格式化结果不一致", name)
	}
}

func TestLinkedInFormatKeepsFullBody(t *testing.T) {
	body := strings.Repeat("长文平台不截断正文。", 100)
	item := &content.Item{Title: "深度分析", Body: body, BrandPillar: "education"}

	text := Format(item, platform.PlatformLinkedIn, FormatOptions{})
	assert.Contains(t, text, body)
	assert.True(t, strings.HasSuffix(text, HashtagsFor("education")))
}

func TestInstagramFormatUsesSeparator(t *testing.T) {
	item := &content.Item{Title: "图文帖", Body: "配图说明", BrandPillar: "community"}

	text := Format(item, platform.PlatformInstagram, FormatOptions{})
	assert.Contains(t, text, instagramSeparator)
	assert.True(t, strings.HasSuffix(text, HashtagsFor("community")))
}

func TestSuppressHashtags(t *testing.T) {
	item := &content.Item{Title: "无标签帖", Body: "正文", BrandPillar: "market-insight"}

	for _, name := range []string{platform.PlatformTwitter, platform.PlatformLinkedIn, platform.PlatformInstagram} {
		text := Format(item, name, FormatOptions{SuppressHashtags: true})
		assert.NotContains(t, text, "#", "平台 %s 不应携带话题标签", name)
	}
}
