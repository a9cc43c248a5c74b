package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Add          func(AddArgs) (Result, error)
	Bulk         func(BulkArgs) (Result, error)
	Filter       func(FilterArgs) (Result, error)
	Remove       func(RemoveArgs) (Result, error)
	ClearHistory func() (Result, error)
	Export       func(ExportArgs) (Result, error)
	Show         func(ShowArgs) (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeAdd:
		if handlers.Add == nil {
			return Result{}, missing("add")
		}
		return handlers.Add(*cmd.Add)
	case TypeStart, TypePause, TypeReset:
		if handlers.Bulk == nil {
			return Result{}, missing(string(cmd.Type))
		}
		return handlers.Bulk(*cmd.Bulk)
	case TypeFilter:
		if handlers.Filter == nil {
			return Result{}, missing("filter")
		}
		return handlers.Filter(*cmd.Filter)
	case TypeRemove:
		if handlers.Remove == nil {
			return Result{}, missing("remove")
		}
		return handlers.Remove(*cmd.Remove)
	case TypeClearHistory:
		if handlers.ClearHistory == nil {
			return Result{}, missing("clear-history")
		}
		return handlers.ClearHistory()
	case TypeExport:
		if handlers.Export == nil {
			return Result{}, missing("export")
		}
		return handlers.Export(*cmd.Export)
	case TypeShow:
		if handlers.Show == nil {
			return Result{}, missing("show")
		}
		return handlers.Show(*cmd.Show)
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}

func missing(name string) *CommandError {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: name + " handler not configured"}
}
