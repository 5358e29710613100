package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatBalance(t *testing.T) {
	tests := []struct {
		balance int64
		want    string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-1500, "-1,500"},
		{-12, "-12"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatBalance(tt.balance))
	}
}

func TestFormatDiscordTimestamp(t *testing.T) {
	ts := time.Unix(1700000000, 0)
	assert.Equal(t, "<t:1700000000:R>", FormatDiscordTimestamp(ts, "R"))
}

func TestMentionList(t *testing.T) {
	assert.Equal(t, "nobody", MentionList(nil, "nobody"))
	assert.Equal(t, "<@1>", MentionList([]string{"1"}, "nobody"))
	assert.Equal(t, "<@1>, <@2>", MentionList([]string{"1", "2"}, "nobody"))
}
