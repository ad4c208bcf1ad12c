package cli

import (
	"fmt"
	"strings"
)

// ParseAssignments разбирает аргументы вида column=value
func ParseAssignments(args []string) (map[string]string, error) {
	values := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid assignment %q, expected column=value", arg)
		}
		values[strings.TrimSpace(key)] = value
	}
	return values, nil
}

func formatValue(v any) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprint(v)
}
