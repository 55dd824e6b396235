package reporting

import (
	"fmt"
	"strings"
)

// RenderCSV renders the report rows as CSV string.
func RenderCSV(r *TrendReport) string {
	var sb strings.Builder

	sb.WriteString("token,direction,trend_score,timeframe_consensus,age_category,age_days,timeframes,confirmed,error\n")
	for _, row := range r.Rows {
		sb.WriteString(fmt.Sprintf("%s,%s,%.2f,%.4f,%s,%.2f,%d,%t,%t\n",
			row.Token,
			row.Direction,
			row.Score,
			row.Consensus,
			row.AgeCategory,
			row.AgeDays,
			row.Timeframes,
			row.Confirmed,
			row.Error,
		))
	}

	return sb.String()
}
