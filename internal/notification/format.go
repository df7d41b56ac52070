package notification

import (
	"fmt"
	"time"

	"FoodExpiryTracker/internal/config"
)

const displayDateLayout = "02 January 2006"

// DescriptionFormatter renders one item line of a reminder email.
type DescriptionFormatter func(name string, expiry time.Time) string

// FormatWithDate renders "Milk [Expiring on : 12 September 2025]" with the date
// taken in loc.
func FormatWithDate(loc *time.Location) DescriptionFormatter {
	if loc == nil {
		loc = time.UTC
	}
	return func(name string, expiry time.Time) string {
		return fmt.Sprintf("%s [Expiring on : %s]", name, expiry.In(loc).Format(displayDateLayout))
	}
}

// FormatNameOnly renders the bare item name.
func FormatNameOnly(name string, _ time.Time) string {
	return name
}

// NewDescriptionFormatter selects the policy configured by NOTIFY_ITEM_FORMAT.
func NewDescriptionFormatter(cfg *config.NotifyConfig) DescriptionFormatter {
	if cfg.ItemFormat == config.ItemFormatName {
		return FormatNameOnly
	}
	return FormatWithDate(cfg.Location)
}
