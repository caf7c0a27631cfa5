package labs

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	boundedPattern = regexp.MustCompile(`(-?\d+(?:\.\d+)?)\s*-\s*(-?\d+(?:\.\d+)?)`)
	singlePattern  = regexp.MustCompile(`(<=|>=|<|>)\s*(-?\d+(?:\.\d+)?)`)
	numberPattern  = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

	rangeSeparators = strings.NewReplacer("to", "-", "TO", "-", "–", "-", "—", "-")
)

type bounds struct {
	low, high       float64
	hasLow, hasHigh bool
}

func (b bounds) classify(v float64) Flag {
	if !b.hasLow || !b.hasHigh {
		return FlagNone
	}
	switch {
	case v < b.low:
		return FlagLow
	case v > b.high:
		return FlagHigh
	default:
		return FlagNormal
	}
}

// ComputeFlag compares a numeric value against a reference range such as
// "12 - 16", "4.5 to 11", or "150–400". Single-sided bounds ("< 200") and
// unparseable input yield FlagNone. Reversed ranges are normalized.
func ComputeFlag(value, referenceRange string) Flag {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return FlagNone
	}
	return parseRange(referenceRange).classify(v)
}

func parseRange(ref string) bounds {
	if ref == "" {
		return bounds{}
	}
	ref = strings.TrimSpace(rangeSeparators.Replace(ref))

	if m := boundedPattern.FindStringSubmatch(ref); m != nil {
		low, lowErr := strconv.ParseFloat(m[1], 64)
		high, highErr := strconv.ParseFloat(m[2], 64)
		if lowErr == nil && highErr == nil {
			return bounds{low: min(low, high), high: max(low, high), hasLow: true, hasHigh: true}
		}
	}

	if m := singlePattern.FindStringSubmatch(ref); m != nil {
		n, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return bounds{}
		}
		if strings.HasPrefix(m[1], ">") {
			return bounds{low: n, hasLow: true}
		}
		return bounds{high: n, hasHigh: true}
	}

	nums := numberPattern.FindAllString(ref, 2)
	if len(nums) == 2 {
		a, aErr := strconv.ParseFloat(nums[0], 64)
		b, bErr := strconv.ParseFloat(nums[1], 64)
		if aErr == nil && bErr == nil {
			return bounds{low: min(a, b), high: max(a, b), hasLow: true, hasHigh: true}
		}
	}

	return bounds{}
}
