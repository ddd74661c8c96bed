package handler

import (
	"strconv"
	"strings"
)

func parsePositiveInt(raw string, fallback int) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value < 1 {
		return fallback
	}
	return value
}

// parseTagsField 展平表单中的标签值,同一输入框里允许用逗号分隔多个标签。
func parseTagsField(values []string) []string {
	tags := make([]string, 0, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			tags = append(tags, strings.TrimSpace(part))
		}
	}
	return tags
}
