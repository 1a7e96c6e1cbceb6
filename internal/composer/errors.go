package composer

import (
	"fmt"
	"regexp"

	"walldecor-admin/pkg/validator"
)

// ValidationError names the rule an input broke. It is always raised before any write.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"error"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

func Invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// User-facing messages keyed by struct namespace, optionally suffixed with the failed tag
var messages = map[string]string{
	"Transaction.Type":                     "transaction type must be PURCHASE or SALE",
	"Transaction.Description":              "description is required",
	"Transaction.ResponsibleEmployeeID":    "responsible employee is required",
	"TransactionItem.ProductID":            "item product is required",
	"TransactionItem.Quantity":             "item quantity must be > 0",
	"TransactionItem.UnitPrice":            "item unit price must be > 0",
	"Production.RawProductID":              "raw product is required",
	"Production.FinishedProductID":         "finished product is required",
	"Production.FinishedProductID:nefield": "raw and finished product must differ",
	"Production.RawQuantity":               "raw quantity must be > 0",
	"Production.FinishedQuantity":          "finished quantity must be > 0",
	"Production.ResponsibleEmployeeID":     "responsible employee is required",
	"StockMovement.ProductID":              "product is required",
	"StockMovement.Type":                   "movement type must be IN or OUT",
	"StockMovement.Quantity":               "quantity must be > 0",
	"StockMovement.ResponsibleEmployeeID":  "responsible employee is required",
	"Product.Name":                         "product name is required",
	"Product.Category":                     "product category is required",
	"Product.Kind":                         "product kind must be FINISHED, RAW_MATERIAL or OTHER",
	"Employee.Name":                        "employee name is required",
	"Employee.Position":                    "employee position is required",
	"Employee.Role":                        "role must be CEO, CTO, CMO or PENDING",
	"Meeting.Title":                        "meeting title is required",
	"Meeting.Location":                     "meeting location is required",
	"Meeting.StartAt":                      "meeting start time is required",
	"Meeting.Attendance":                   "at least one attendee is required",
	"Meeting.Attendance.Name":              "attendee name is required",
	"Meeting.Attendance.Status":            "attendance status must be HADIR, IZIN or ALPHA",
}

var indexPattern = regexp.MustCompile(`\[\d+\]`)

// check runs the struct tags and converts the first failure into a ValidationError
func check(v any) error {
	errs := validator.ValidateStruct(v)
	if len(errs) == 0 {
		return nil
	}
	first := errs[0]
	key := indexPattern.ReplaceAllString(first.FailedField, "")
	msg, ok := messages[key+":"+first.Tag]
	if !ok {
		msg, ok = messages[key]
	}
	if !ok {
		msg = fmt.Sprintf("%s failed on '%s'", first.Field, first.Tag)
	}
	return Invalid(first.Field, msg)
}
