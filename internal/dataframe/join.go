package dataframe

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"salesetl/internal/errors"
	"salesetl/internal/series"
)

// JoinType specifies which rows survive a join.
type JoinType int

const (
	InnerJoin JoinType = iota
	LeftJoin
	RightJoin
	FullOuterJoin
)

func (jt JoinType) String() string {
	switch jt {
	case InnerJoin:
		return "inner"
	case LeftJoin:
		return "left"
	case RightJoin:
		return "right"
	case FullOuterJoin:
		return "full_outer"
	default:
		return "unknown"
	}
}

// JoinOptions configures a join. Setting On joins on a column shared by both
// sides and emits it once in the result; otherwise LeftKey and RightKey name
// the key columns independently and both survive.
type JoinOptions struct {
	Type     JoinType
	On       string
	LeftKey  string
	RightKey string
}

// Join performs a hash join between df (left) and other (right).
//
// The left side is indexed; unmatched rows emit -1 gather indices, which
// Take materializes as type-appropriate zero values.
func (df *DataFrame) Join(other *DataFrame, options JoinOptions) (*DataFrame, error) {
	leftKeys, rightKeys, err := resolveJoinKeys(df, other, options)
	if err != nil {
		return nil, err
	}

	leftArrays, err := df.columnArrays(leftKeys)
	if err != nil {
		return nil, err
	}
	defer releaseArrays(leftArrays)

	rightArrays, err := other.columnArrays(rightKeys)
	if err != nil {
		return nil, err
	}
	defer releaseArrays(rightArrays)

	index := newHashIndex(df.Len())
	for row := 0; row < df.Len(); row++ {
		index.add(rowKey(leftArrays, row), row)
	}

	leftIndices := make([]int, 0, other.Len())
	rightIndices := make([]int, 0, other.Len())
	matchedLeft := make([]bool, df.Len())

	for row := 0; row < other.Len(); row++ {
		rows, found := index.lookup(rowKey(rightArrays, row))
		if found {
			for _, leftRow := range rows {
				matchedLeft[leftRow] = true
				leftIndices = append(leftIndices, leftRow)
				rightIndices = append(rightIndices, row)
			}
			continue
		}
		if options.Type == RightJoin || options.Type == FullOuterJoin {
			leftIndices = append(leftIndices, -1)
			rightIndices = append(rightIndices, row)
		}
	}

	if options.Type == LeftJoin || options.Type == FullOuterJoin {
		for leftRow, matched := range matchedLeft {
			if !matched {
				leftIndices = append(leftIndices, leftRow)
				rightIndices = append(rightIndices, -1)
			}
		}
	}

	return buildJoinResult(df, other, options, leftIndices, rightIndices, rightArrays), nil
}

func resolveJoinKeys(left, right *DataFrame, options JoinOptions) ([]string, []string, error) {
	if options.On != "" {
		if !left.HasColumn(options.On) {
			return nil, nil, errors.NewConfigurationError("join",
				fmt.Sprintf("join column %q not found in left frame", options.On))
		}
		if !right.HasColumn(options.On) {
			return nil, nil, errors.NewConfigurationError("join",
				fmt.Sprintf("join column %q not found in right frame", options.On))
		}
		return []string{options.On}, []string{options.On}, nil
	}

	if options.LeftKey == "" || options.RightKey == "" {
		return nil, nil, errors.NewConfigurationError("join",
			"join requires On or both LeftKey and RightKey")
	}
	if !left.HasColumn(options.LeftKey) {
		return nil, nil, errors.NewConfigurationError("join",
			fmt.Sprintf("join column %q not found in left frame", options.LeftKey))
	}
	if !right.HasColumn(options.RightKey) {
		return nil, nil, errors.NewConfigurationError("join",
			fmt.Sprintf("join column %q not found in right frame", options.RightKey))
	}
	return []string{options.LeftKey}, []string{options.RightKey}, nil
}

// buildJoinResult gathers both sides through the index pairs. For On-joins
// the shared key column is coalesced: taken from the left when present,
// and filled from the right for right-only rows so outer joins never lose
// key values.
func buildJoinResult(left, right *DataFrame, options JoinOptions,
	leftIndices, rightIndices []int, rightKeyArrays []arrow.Array,
) *DataFrame {
	mem := memory.NewGoAllocator()
	result := make([]ISeries, 0, left.Width()+right.Width())

	for _, name := range left.order {
		if options.On != "" && name == options.On {
			result = append(result, coalesceKeyColumn(left, options.On, leftIndices, rightIndices, rightKeyArrays[0], mem))
			continue
		}
		result = append(result, gatherSeries(left.columns[name], leftIndices, mem))
	}

	for _, name := range right.order {
		if options.On != "" && name == options.On {
			continue
		}
		if left.HasColumn(name) {
			// duplicate non-key column: keep the left side only
			continue
		}
		result = append(result, gatherSeries(right.columns[name], rightIndices, mem))
	}

	return New(result...)
}

// coalesceKeyColumn materializes the On column across both sides of an
// outer join. Only string keys are supported since all join keys in the
// pipeline are identifiers.
func coalesceKeyColumn(left *DataFrame, name string,
	leftIndices, rightIndices []int, rightKeys arrow.Array, mem memory.Allocator,
) ISeries {
	leftArr := left.columns[name].Array()
	defer leftArr.Release()

	leftStr, ok := leftArr.(*array.String)
	if !ok {
		return gatherSeries(left.columns[name], leftIndices, mem)
	}
	rightStr, _ := rightKeys.(*array.String)

	values := make([]string, len(leftIndices))
	for i, leftRow := range leftIndices {
		switch {
		case leftRow >= 0:
			values[i] = leftStr.Value(leftRow)
		case rightStr != nil && rightIndices[i] >= 0:
			values[i] = rightStr.Value(rightIndices[i])
		}
	}

	return series.New(name, values, mem)
}
