package partitioner

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/danthegoodman1/tdastore/coerce"
)

type (
	PartitionPlan struct {
		Func string   `json:"func" validate:"required"`
		Args []string `json:"args" validate:"required,min=1"`
		As   string   `json:"as" validate:"required"`
	}

	PartitionFunc func(row map[string]any, args []string) (string, error)
)

var (
	Functions = make(map[string]PartitionFunc)

	ErrFuncNotFound = errors.New("partition function not found")

	ErrMissingArgs       = errors.New("missing args")
	ErrMissingColumns    = errors.New("missing one or more columns specified in args")
	ErrInvalidColumnType = errors.New("invalid column type")

	// layouts accepted for text datetime columns
	timeLayouts = []string{
		"2006-01-02T15:04:05.000Z",
		coerce.DateTimeLayout,
		time.RFC3339Nano,
	}
)

func timeFunc(format func(t time.Time) string) PartitionFunc {
	return func(row map[string]any, args []string) (string, error) {
		t, err := parseTimeFunc(row, args)
		if err != nil {
			return "", fmt.Errorf("error in parseTimeFunc: %w", err)
		}
		return format(t), nil
	}
}

func RegisterFunctions() {
	Functions["toDay"] = timeFunc(func(t time.Time) string {
		return fmt.Sprint(t.Day())
	})
	Functions["toMonth"] = timeFunc(func(t time.Time) string {
		return fmt.Sprint(int(t.Month()))
	})
	Functions["toYear"] = timeFunc(func(t time.Time) string {
		return fmt.Sprint(t.Year())
	})
	Functions["toYearMonth"] = timeFunc(func(t time.Time) string {
		return t.Format("2006-01")
	})
	Functions["toYearDay"] = timeFunc(func(t time.Time) string {
		return fmt.Sprint(t.YearDay())
	})
	Functions["toYearWeek"] = timeFunc(func(t time.Time) string {
		_, week := t.ISOWeek()
		return fmt.Sprint(week)
	})
	Functions["toWeekDay"] = timeFunc(func(t time.Time) string {
		return fmt.Sprint(t.Weekday())
	})
	// column partitions by a column's plain value, such as a symbol
	Functions["column"] = func(row map[string]any, args []string) (string, error) {
		if len(args) == 0 {
			return "", ErrMissingArgs
		}
		v, exists := row[args[0]]
		if !exists {
			return "", ErrMissingColumns
		}
		s := fmt.Sprint(v)
		if s == "" || strings.ContainsAny(s, "/=") {
			return "", ErrInvalidColumnType
		}
		return s, nil
	}
}

func GetRowPartition(row map[string]any, partitioners []PartitionPlan) (string, error) {
	var finalParts []string
	for _, partFunc := range partitioners {
		f, ok := Functions[partFunc.Func]
		if !ok {
			return "", ErrFuncNotFound
		}

		s, err := f(row, partFunc.Args)
		if err != nil {
			return "", fmt.Errorf("error processing partition function %s: %w", partFunc.Func, err)
		}
		finalParts = append(finalParts, fmt.Sprintf("%s=%s", partFunc.As, s))
	}
	return strings.Join(finalParts, "/"), nil
}

func parseTimeFunc(row map[string]any, args []string) (t time.Time, err error) {
	if len(args) == 0 {
		err = ErrMissingArgs
		return
	}

	key := args[0]

	if key == "now()" {
		return time.Now(), nil
	}

	value, exists := row[key]
	if !exists {
		err = ErrMissingColumns
		return
	}

	switch v := value.(type) {
	case time.Time:
		t = v
	case string:
		for _, layout := range timeLayouts {
			if t, err = time.Parse(layout, v); err == nil {
				return
			}
		}
		err = fmt.Errorf("error in time.Parse for string: %w", err)
	case float64:
		// unix millis
		t = time.UnixMilli(int64(v)).UTC()
	case int64:
		t = time.UnixMilli(v).UTC()
	default:
		err = ErrInvalidColumnType
	}
	return
}
