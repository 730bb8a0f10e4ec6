package types

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/cloudcomb/ncp/internal/build_info"
	"github.com/cloudcomb/ncp/internal/services/markdown"
)

// NcpBuildInfo stamps reports and artifacts with the binary that produced them.
type NcpBuildInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// CurrentBuildInfo returns the build info of the running binary.
func CurrentBuildInfo() NcpBuildInfo {
	return NcpBuildInfo{
		Version: build_info.Version,
		Commit:  build_info.Commit,
		Date:    build_info.Date,
	}
}

// Cost is a single Cost Explorer result row.
type Cost struct {
	Timestamp       time.Time `json:"timestamp"`
	TimePeriodStart string    `json:"time_period_start"`
	TimePeriodEnd   string    `json:"time_period_end"`
	Service         string    `json:"service"`
	UsageType       string    `json:"usage_type"`
	Cost            float64   `json:"cost"`
}

// CostData aggregates cost rows with their total.
type CostData struct {
	Costs []Cost  `json:"costs"`
	Total float64 `json:"total"`
}

// CostReport is the cost report for the network estate of one environment.
type CostReport struct {
	NcpBuildInfo NcpBuildInfo        `json:"ncp_build_info"`
	Timestamp    time.Time           `json:"timestamp"`
	Environment  string              `json:"environment"`
	Region       string              `json:"region"`
	CostData     CostData            `json:"cost_data"`
	StartDate    time.Time           `json:"start_date"`
	EndDate      time.Time           `json:"end_date"`
	Granularity  string              `json:"granularity"`
	Tags         map[string][]string `json:"tags"`
}

func NewCostReport(environment, region string, timestamp time.Time) *CostReport {
	return &CostReport{
		Environment:  environment,
		Region:       region,
		Timestamp:    timestamp,
		NcpBuildInfo: CurrentBuildInfo(),
	}
}

func (c *CostReport) GetDirPath() string {
	return filepath.Join("ncp-reports", c.Region)
}

func (c *CostReport) GetJsonPath() string {
	return filepath.Join(c.GetDirPath(), fmt.Sprintf("%s-cost-report.json", c.Environment))
}

func (c *CostReport) GetMarkdownPath() string {
	return filepath.Join(c.GetDirPath(), fmt.Sprintf("%s-cost-report.md", c.Environment))
}

func (c *CostReport) GetCSVPath() string {
	return filepath.Join(c.GetDirPath(), fmt.Sprintf("%s-cost-report.csv", c.Environment))
}

func (c *CostReport) AsJson() ([]byte, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("❌ Failed to marshal cost report: %v", err)
	}
	return data, nil
}

func (c *CostReport) WriteAsJson() error {
	if err := os.MkdirAll(c.GetDirPath(), 0755); err != nil {
		return fmt.Errorf("❌ Failed to create directory structure: %v", err)
	}

	data, err := c.AsJson()
	if err != nil {
		return err
	}

	if err := os.WriteFile(c.GetJsonPath(), data, 0644); err != nil {
		return fmt.Errorf("❌ Failed to write file: %v", err)
	}

	return nil
}

func (c *CostReport) WriteAsMarkdown(suppressToTerminal bool) error {
	if err := os.MkdirAll(c.GetDirPath(), 0755); err != nil {
		return fmt.Errorf("❌ Failed to create directory structure: %v", err)
	}

	md := c.AsMarkdown()
	return md.Print(markdown.PrintOptions{ToTerminal: !suppressToTerminal, ToFile: c.GetMarkdownPath()})
}

func (c *CostReport) AsMarkdown() *markdown.Markdown {
	md := markdown.New()
	md.AddHeading(fmt.Sprintf("Network Cost Report - %s (%s)", c.Environment, c.Region), 1)
	md.AddParagraph(fmt.Sprintf("**Report Period:** %s to %s", c.StartDate.Format("2006-01-02"), c.EndDate.Format("2006-01-02")))
	md.AddParagraph(fmt.Sprintf("**Granularity:** %s", c.Granularity))

	if len(c.Tags) > 0 {
		md.AddParagraph("**Tags:**")
		for _, key := range slices.Sorted(maps.Keys(c.Tags)) {
			md.AddParagraph(fmt.Sprintf("%s=%s", key, strings.Join(c.Tags[key], ",")))
		}
	}

	md.AddParagraph(fmt.Sprintf("**Total Cost:** $%.2f USD", c.CostData.Total))

	serviceTotals := make(map[string]float64)
	for _, cost := range c.CostData.Costs {
		serviceTotals[cost.Service] += cost.Cost
	}

	md.AddHeading("Cost by Service", 2)
	summaryHeaders := []string{"Service", "Total Cost (USD)"}
	summaryData := [][]string{}
	for _, service := range slices.Sorted(maps.Keys(serviceTotals)) {
		summaryData = append(summaryData, []string{service, fmt.Sprintf("$%.2f", serviceTotals[service])})
	}
	summaryData = append(summaryData, []string{"**TOTAL**", fmt.Sprintf("$%.2f", c.CostData.Total)})
	md.AddTable(summaryHeaders, summaryData)

	md.AddHeading("Detailed Cost Breakdown", 2)
	headers := []string{"Time Period Start", "Time Period End", "Service", "Usage Type", "Cost (USD)"}
	data := [][]string{}
	for _, cost := range c.CostData.Costs {
		data = append(data, []string{
			formatReportTime(cost.TimePeriodStart),
			formatReportTime(cost.TimePeriodEnd),
			cost.Service,
			cost.UsageType,
			fmt.Sprintf("$%.2f", cost.Cost),
		})
	}
	// Skip repeating the time period columns on consecutive rows
	md.AddTable(headers, data, 0, 1)

	md.AddHeading("NCP Build Info", 2)
	addBuildInfoSection(md, c.NcpBuildInfo)

	return md
}

func (c *CostReport) AsCSVRecords() [][]string {
	records := [][]string{
		{"Time Period Start", "Time Period End", "Service", "Usage Type", "Cost (USD)"},
	}

	for _, cost := range c.CostData.Costs {
		records = append(records, []string{
			cost.TimePeriodStart,
			cost.TimePeriodEnd,
			cost.Service,
			cost.UsageType,
			fmt.Sprintf("%.2f", cost.Cost),
		})
	}

	records = append(records, []string{"", "", "", "TOTAL", fmt.Sprintf("%.2f", c.CostData.Total)})

	return records
}

func (c *CostReport) WriteAsCSV() error {
	if err := os.MkdirAll(c.GetDirPath(), 0755); err != nil {
		return fmt.Errorf("❌ Failed to create directory structure: %v", err)
	}

	file, err := os.Create(c.GetCSVPath())
	if err != nil {
		return fmt.Errorf("❌ Failed to create file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.WriteAll(c.AsCSVRecords()); err != nil {
		return fmt.Errorf("❌ Failed to write CSV records: %v", err)
	}

	return nil
}

// NatGatewayTraffic summarises CloudWatch metrics for one NAT gateway.
type NatGatewayTraffic struct {
	NatGatewayId          string  `json:"nat_gateway_id"`
	BytesOutToDestination float64 `json:"bytes_out_to_destination"`
	BytesInFromSource     float64 `json:"bytes_in_from_source"`
	ActiveConnectionCount float64 `json:"active_connection_count"`
}

// TrafficReport is the NAT gateway traffic report for one environment.
type TrafficReport struct {
	NcpBuildInfo NcpBuildInfo        `json:"ncp_build_info"`
	Timestamp    time.Time           `json:"timestamp"`
	Environment  string              `json:"environment"`
	Region       string              `json:"region"`
	StartDate    time.Time           `json:"start_date"`
	EndDate      time.Time           `json:"end_date"`
	NatGateways  []NatGatewayTraffic `json:"nat_gateways"`
}

func NewTrafficReport(environment, region string, timestamp time.Time) *TrafficReport {
	return &TrafficReport{
		Environment:  environment,
		Region:       region,
		Timestamp:    timestamp,
		NcpBuildInfo: CurrentBuildInfo(),
	}
}

func (t *TrafficReport) GetDirPath() string {
	return filepath.Join("ncp-reports", t.Region)
}

func (t *TrafficReport) GetJsonPath() string {
	return filepath.Join(t.GetDirPath(), fmt.Sprintf("%s-traffic-report.json", t.Environment))
}

func (t *TrafficReport) GetMarkdownPath() string {
	return filepath.Join(t.GetDirPath(), fmt.Sprintf("%s-traffic-report.md", t.Environment))
}

func (t *TrafficReport) AsJson() ([]byte, error) {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("❌ Failed to marshal traffic report: %v", err)
	}
	return data, nil
}

func (t *TrafficReport) WriteAsJson() error {
	if err := os.MkdirAll(t.GetDirPath(), 0755); err != nil {
		return fmt.Errorf("❌ Failed to create directory structure: %v", err)
	}

	data, err := t.AsJson()
	if err != nil {
		return err
	}

	if err := os.WriteFile(t.GetJsonPath(), data, 0644); err != nil {
		return fmt.Errorf("❌ Failed to write file: %v", err)
	}

	return nil
}

func (t *TrafficReport) WriteAsMarkdown(suppressToTerminal bool) error {
	if err := os.MkdirAll(t.GetDirPath(), 0755); err != nil {
		return fmt.Errorf("❌ Failed to create directory structure: %v", err)
	}

	md := t.AsMarkdown()
	return md.Print(markdown.PrintOptions{ToTerminal: !suppressToTerminal, ToFile: t.GetMarkdownPath()})
}

func (t *TrafficReport) AsMarkdown() *markdown.Markdown {
	md := markdown.New()
	md.AddHeading(fmt.Sprintf("NAT Gateway Traffic Report - %s (%s)", t.Environment, t.Region), 1)
	md.AddParagraph(fmt.Sprintf("**Report Period:** %s to %s", t.StartDate.Format("2006-01-02"), t.EndDate.Format("2006-01-02")))

	headers := []string{"NAT Gateway", "Bytes Out To Destination", "Bytes In From Source", "Active Connections"}
	data := [][]string{}
	for _, nat := range t.NatGateways {
		data = append(data, []string{
			nat.NatGatewayId,
			formatBytes(nat.BytesOutToDestination),
			formatBytes(nat.BytesInFromSource),
			fmt.Sprintf("%.0f", nat.ActiveConnectionCount),
		})
	}
	md.AddTable(headers, data)

	md.AddHeading("NCP Build Info", 2)
	addBuildInfoSection(md, t.NcpBuildInfo)

	return md
}

func addBuildInfoSection(md *markdown.Markdown, info NcpBuildInfo) {
	md.AddParagraph(fmt.Sprintf("**Version:** %s", info.Version))
	md.AddParagraph(fmt.Sprintf("**Commit:** %s", info.Commit))
	md.AddParagraph(fmt.Sprintf("**Date:** %s", info.Date))
}

func formatReportTime(value string) string {
	if parsed, err := time.Parse("2006-01-02T15:04:05Z", value); err == nil {
		return parsed.Format("2006-01-02 15:04")
	}
	if parsed, err := time.Parse("2006-01-02", value); err == nil {
		return parsed.Format("2006-01-02")
	}
	return value
}

// formatBytes renders a byte count with binary unit suffixes.
func formatBytes(bytes float64) string {
	const unit = 1024.0
	if bytes < unit {
		return fmt.Sprintf("%.0f B", bytes)
	}
	div, exp := unit, 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %ciB", bytes/div, "KMGTPE"[exp])
}
