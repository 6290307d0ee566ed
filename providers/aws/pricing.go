package aws

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/pricing"
	pricingtypes "github.com/aws/aws-sdk-go-v2/service/pricing/types"
)

// priceListItem is the slice of a Price List document we read
type priceListItem struct {
	Terms struct {
		OnDemand map[string]struct {
			PriceDimensions map[string]struct {
				Unit         string            `json:"unit"`
				PricePerUnit map[string]string `json:"pricePerUnit"`
			} `json:"priceDimensions"`
		} `json:"OnDemand"`
	} `json:"terms"`
}

// FetchHostingPrice returns the on-demand USD hourly price of a hosting instance type in the client region
func (c *Client) FetchHostingPrice(ctx context.Context, instanceType string) (float64, error) {
	out, err := c.pricingClient.GetProducts(ctx, &pricing.GetProductsInput{
		ServiceCode: aws.String("AmazonSageMaker"),
		Filters: []pricingtypes.Filter{
			{
				Field: aws.String("instanceName"),
				Type:  pricingtypes.FilterTypeTermMatch,
				Value: aws.String(instanceType),
			},
			{
				Field: aws.String("regionCode"),
				Type:  pricingtypes.FilterTypeTermMatch,
				Value: aws.String(c.region),
			},
			{
				Field: aws.String("component"),
				Type:  pricingtypes.FilterTypeTermMatch,
				Value: aws.String("Hosting"),
			},
		},
		MaxResults: aws.Int32(10),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to fetch pricing for %s: %w", instanceType, err)
	}

	for _, doc := range out.PriceList {
		price, ok := parseOnDemandUSD(doc)
		if ok {
			return price, nil
		}
	}
	return 0, fmt.Errorf("no on-demand price for %s in %s", instanceType, c.region)
}

// parseOnDemandUSD extracts the first positive USD price from a Price List document
func parseOnDemandUSD(doc string) (float64, bool) {
	var item priceListItem
	if err := json.Unmarshal([]byte(doc), &item); err != nil {
		return 0, false
	}
	for _, term := range item.Terms.OnDemand {
		for _, dim := range term.PriceDimensions {
			usd, ok := dim.PricePerUnit["USD"]
			if !ok {
				continue
			}
			price, err := strconv.ParseFloat(usd, 64)
			if err == nil && price > 0 {
				return price, true
			}
		}
	}
	return 0, false
}
