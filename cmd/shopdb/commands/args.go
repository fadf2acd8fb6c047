package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/deppfellow/go-shopdb/internal/model"
	"github.com/shopspring/decimal"
)

func parseID(name, arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: must be an integer", name, arg)
	}
	return id, nil
}

// parseLine reads a "product:quantity" pair.
func parseLine(arg string) (model.OrderLine, error) {
	productArg, quantityArg, ok := strings.Cut(arg, ":")
	if !ok {
		return model.OrderLine{}, fmt.Errorf("invalid line %q: want product:quantity", arg)
	}

	productID, err := parseID("product id", productArg)
	if err != nil {
		return model.OrderLine{}, err
	}
	quantity, err := strconv.Atoi(quantityArg)
	if err != nil {
		return model.OrderLine{}, fmt.Errorf("invalid quantity %q in line %q", quantityArg, arg)
	}

	return model.OrderLine{ProductID: productID, Quantity: quantity}, nil
}

func parseLines(args []string) ([]model.OrderLine, error) {
	lines := make([]model.OrderLine, 0, len(args))
	for _, arg := range args {
		line, err := parseLine(arg)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func formatID(p *int64) string {
	if p == nil {
		return "-"
	}
	return strconv.FormatInt(*p, 10)
}

func formatPrice(d decimal.Decimal) string {
	return d.String()
}
