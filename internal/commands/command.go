package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sandeepkv93/timerd/internal/model"
)

type Type string

const (
	TypeAdd          Type = "add"
	TypeStart        Type = "start"
	TypePause        Type = "pause"
	TypeReset        Type = "reset"
	TypeFilter       Type = "filter"
	TypeRemove       Type = "remove"
	TypeClearHistory Type = "clear-history"
	TypeExport       Type = "export"
	TypeShow         Type = "show"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// AddArgs carries raw form text; the handler validates it like the add form.
type AddArgs struct {
	Name         string
	DurationText string
	Category     string
}

type BulkArgs struct {
	Action   model.BulkAction
	Category string
}

type FilterArgs struct {
	Category string
}

type RemoveArgs struct {
	ID string
}

type ExportArgs struct {
	Path   string
	Format string
}

type ShowArgs struct {
	View string
}

type Command struct {
	Type   Type
	Raw    string
	Add    *AddArgs
	Bulk   *BulkArgs
	Filter *FilterArgs
	Remove *RemoveArgs
	Export *ExportArgs
	Show   *ShowArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeAdd:
		return parseAdd(input, args)
	case TypeStart, TypePause, TypeReset:
		return parseBulk(input, Type(head), args)
	case TypeFilter:
		return parseFilter(input, args)
	case TypeRemove:
		return parseRemove(input, args)
	case TypeClearHistory:
		return Command{Type: TypeClearHistory, Raw: input}, nil
	case TypeExport:
		return parseExport(input, args)
	case TypeShow:
		return parseShow(input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

// parseAdd reads "add <name...> <seconds> <category>". The name may contain
// spaces; the category is a single word.
func parseAdd(raw string, args []string) (Command, error) {
	if len(args) < 3 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires name, seconds and category"}
	}
	n := len(args)
	return Command{Type: TypeAdd, Raw: raw, Add: &AddArgs{
		Name:         strings.Join(args[:n-2], " "),
		DurationText: args[n-2],
		Category:     args[n-1],
	}}, nil
}

func parseBulk(raw string, typ Type, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s requires a category", typ)}
	}
	action, err := model.ParseBulkAction(string(typ))
	if err != nil {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: err.Error()}
	}
	return Command{Type: typ, Raw: raw, Bulk: &BulkArgs{Action: action, Category: strings.Join(args, " ")}}, nil
}

func parseFilter(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "filter requires a category or all"}
	}
	category := strings.Join(args, " ")
	if strings.EqualFold(category, model.CategoryAll) {
		category = model.CategoryAll
	}
	return Command{Type: TypeFilter, Raw: raw, Filter: &FilterArgs{Category: category}}, nil
}

func parseRemove(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "remove requires a timer id"}
	}
	return Command{Type: TypeRemove, Raw: raw, Remove: &RemoveArgs{ID: args[0]}}, nil
}

// parseExport reads "export <path> [json|yaml]". Without an explicit format
// the file extension decides.
func parseExport(raw string, args []string) (Command, error) {
	if len(args) == 0 || len(args) > 2 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "export requires a path and optional format"}
	}
	format := ""
	if len(args) == 2 {
		format = strings.ToLower(args[1])
	} else {
		switch strings.ToLower(filepath.Ext(args[0])) {
		case ".yaml", ".yml":
			format = "yaml"
		default:
			format = "json"
		}
	}
	return Command{Type: TypeExport, Raw: raw, Export: &ExportArgs{Path: args[0], Format: format}}, nil
}

func parseShow(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "show requires timers or history"}
	}
	view := strings.ToLower(args[0])
	if view != "timers" && view != "history" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown view: %s", view)}
	}
	return Command{Type: TypeShow, Raw: raw, Show: &ShowArgs{View: view}}, nil
}
