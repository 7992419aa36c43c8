package menu

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	runewidth "github.com/mattn/go-runewidth"
	"github.com/pkg/errors"
)

// IsInterrupt reports whether the operator cancelled a prompt.
func IsInterrupt(err error) bool {
	return errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF)
}

// Select renders an aligned selection menu and returns the index of the
// chosen option within the original slice.
func Select(label string, options []Option) (int, error) {
	items, indexes := formatItems(options)
	if len(items) == 0 {
		return -1, errors.New("no selectable options")
	}

	prompt := promptui.Select{
		Label: label,
		Items: items,
		Size:  12,
		Templates: &promptui.SelectTemplates{
			Label:    "{{ . }}:",
			Active:   "▶ {{ . | cyan }}",
			Inactive: "  {{ . }}",
			Selected: "✅ {{ . | green }}",
			Help:     "{{ \"Navigate:\" | faint }} {{ .NextKey }} {{ .PrevKey }} {{ \"|\" | faint }} {{ \"Exit:\" | faint }} Ctrl + C",
		},
	}

	index, _, err := prompt.Run()
	if err != nil {
		return -1, err
	}

	if index < 0 || index >= len(indexes) {
		return -1, errors.New("invalid selection")
	}
	return indexes[index], nil
}

// PromptString reads a line with optional validation.
func PromptString(label string, validate func(string) error) (string, error) {
	prompt := promptui.Prompt{Label: label, Validate: validate}
	return prompt.Run()
}

// PromptOptional reads a line that may be empty.
func PromptOptional(label string) (string, error) {
	prompt := promptui.Prompt{Label: label}
	return prompt.Run()
}

// PromptPassword reads a masked line.
func PromptPassword(label string) (string, error) {
	prompt := promptui.Prompt{Label: label, Mask: '*'}
	return prompt.Run()
}

// PromptPort reads a TCP port with a default value.
func PromptPort(label string, def int) (int, error) {
	prompt := promptui.Prompt{
		Label:   label,
		Default: strconv.Itoa(def),
		Validate: func(input string) error {
			port, err := strconv.Atoi(strings.TrimSpace(input))
			if err != nil {
				return errors.New("please enter a number")
			}
			if port < 1 || port > 65535 {
				return errors.New("port must be between 1 and 65535")
			}
			return nil
		},
	}

	value, err := prompt.Run()
	if err != nil {
		return 0, err
	}
	port, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, errors.Wrap(err, "invalid port")
	}
	return port, nil
}

// PromptYesNo asks a y/n question.
func PromptYesNo(label string, def bool) (bool, error) {
	suffix := "y/N"
	if def {
		suffix = "Y/n"
	}

	prompt := promptui.Prompt{
		Label: fmt.Sprintf("%s [%s]", label, suffix),
		Validate: func(input string) error {
			switch strings.ToLower(strings.TrimSpace(input)) {
			case "", "y", "yes", "n", "no":
				return nil
			}
			return errors.New("please answer y or n")
		},
	}

	value, err := prompt.Run()
	if err != nil {
		return false, err
	}

	switch strings.ToLower(strings.TrimSpace(value)) {
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	}
	return def, nil
}

// WaitEnter blocks until the operator presses Enter.
func WaitEnter(message string) {
	prompt := promptui.Prompt{Label: message}
	_, _ = prompt.Run()
}

var numberPattern = regexp.MustCompile(`^(\d+)\.\s*(.*)$`)

type entry struct {
	prefix        string
	numberPart    string
	textPart      string
	originalIndex int
}

// formatItems aligns numbered labels into even columns, accounting for
// wide status glyphs.
func formatItems(options []Option) ([]string, []int) {
	entries := buildEntries(options)
	if len(entries) == 0 {
		return nil, nil
	}

	maxPrefixWidth := 0
	maxNumberWidth := 0
	for _, e := range entries {
		if width := runewidth.StringWidth(e.prefix); width > maxPrefixWidth {
			maxPrefixWidth = width
		}
		if len(e.numberPart) > maxNumberWidth {
			maxNumberWidth = len(e.numberPart)
		}
	}

	items := make([]string, 0, len(entries))
	indexes := make([]int, 0, len(entries))

	for _, e := range entries {
		prefix := e.prefix + strings.Repeat(" ", maxPrefixWidth-runewidth.StringWidth(e.prefix))

		numberColumn := ""
		if e.numberPart != "" {
			numberColumn = fmt.Sprintf("%*s. ", maxNumberWidth, e.numberPart)
		} else if maxNumberWidth > 0 {
			numberColumn = strings.Repeat(" ", maxNumberWidth+2)
		}

		items = append(items, fmt.Sprintf("%s %s%s", prefix, numberColumn, e.textPart))
		indexes = append(indexes, e.originalIndex)
	}

	return items, indexes
}

func buildEntries(options []Option) []entry {
	entries := make([]entry, 0, len(options))

	for idx, option := range options {
		if !option.Enabled {
			continue
		}

		numberPart := ""
		textPart := option.Label
		if matches := numberPattern.FindStringSubmatch(option.Label); len(matches) == 3 {
			numberPart = matches[1]
			textPart = matches[2]
		}

		entries = append(entries, entry{
			prefix:        statusPrefix(option.Color),
			numberPart:    numberPart,
			textPart:      textPart,
			originalIndex: idx,
		})
	}

	return entries
}

func statusPrefix(color string) string {
	switch color {
	case "red":
		return "🔴"
	case "green":
		return "🟢"
	case "yellow":
		return "🟡"
	case "cyan":
		return "🔵"
	default:
		return "⚪"
	}
}
