package entity

import (
	"fmt"
	"strconv"
	"strings"
)

// MenuOption is one row of the emergency options list.
type MenuOption struct {
	Id          int
	Title       string
	Description string
	Strategy    ArmedStrategy
}

// RowId is the list row identifier sent to the chat client ("option1".."option4").
func (o MenuOption) RowId() string {
	return fmt.Sprintf("option%d", o.Id)
}

// ParseOptionId accepts both "3" and "option3". ok is false for anything else.
func ParseOptionId(raw string) (int, bool) {
	raw = strings.TrimSpace(strings.ToLower(raw))
	raw = strings.TrimPrefix(raw, "option")
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return id, true
}
