package inventory

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Shopify paginates with an opaque page_info cursor in the Link
// header. The page cap bounds a catalog fetch if the shop ever grows
// past what the console can usefully render.
const (
	shopifyPageSize = 250
	shopifyMaxPages = 20
)

// ShopifySource reads the product catalog from the Shopify Admin API.
type ShopifySource struct {
	client     *resty.Client
	apiVersion string
	configured bool
	logger     *zap.Logger
}

func NewShopifySource(storeDomain, accessToken, apiVersion string, logger *zap.Logger) *ShopifySource {
	client := resty.New().
		SetBaseURL("https://"+storeDomain).
		SetHeader("X-Shopify-Access-Token", accessToken).
		SetHeader("Accept", "application/json").
		SetTimeout(10 * time.Second).
		SetRetryCount(2)
	return &ShopifySource{
		client:     client,
		apiVersion: apiVersion,
		configured: storeDomain != "" && accessToken != "",
		logger:     logger,
	}
}

type shopifyVariant struct {
	ID                int64  `json:"id"`
	Title             string `json:"title"`
	SKU               string `json:"sku"`
	Price             string `json:"price"`
	InventoryQuantity *int   `json:"inventory_quantity"`
}

type shopifyProduct struct {
	ID       int64            `json:"id"`
	Title    string           `json:"title"`
	Status   string           `json:"status"`
	Variants []shopifyVariant `json:"variants"`
}

type shopifyProductsResponse struct {
	Products []shopifyProduct `json:"products"`
}

// Entries fetches every active product variant and projects it into
// the merged catalog shape.
func (s *ShopifySource) Entries(ctx context.Context) ([]CatalogEntry, error) {
	if !s.configured {
		return nil, fmt.Errorf("%w: store domain or access token not configured", ErrShopifyUnavailable)
	}

	entries := []CatalogEntry{}
	pageInfo := ""
	for page := 0; page < shopifyMaxPages; page++ {
		req := s.client.R().
			SetContext(ctx).
			SetQueryParam("limit", strconv.Itoa(shopifyPageSize)).
			SetResult(&shopifyProductsResponse{})
		if pageInfo != "" {
			req.SetQueryParam("page_info", pageInfo)
		}

		resp, err := req.Get(fmt.Sprintf("/admin/api/%s/products.json", s.apiVersion))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrShopifyUnavailable, err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("%w: shopify responded %s", ErrShopifyUnavailable, resp.Status())
		}

		body, ok := resp.Result().(*shopifyProductsResponse)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected response shape", ErrShopifyUnavailable)
		}
		for _, product := range body.Products {
			if product.Status != "" && product.Status != "active" {
				continue
			}
			for _, variant := range product.Variants {
				entries = append(entries, variantEntry(product, variant))
			}
		}

		pageInfo = nextPageInfo(resp.Header().Get("Link"))
		if pageInfo == "" {
			break
		}
	}

	s.logger.Debug("fetched shopify catalog", zap.Int("entries", len(entries)))
	return entries, nil
}

func variantEntry(product shopifyProduct, variant shopifyVariant) CatalogEntry {
	name := product.Title
	if variant.Title != "" && variant.Title != "Default Title" {
		name = product.Title + " - " + variant.Title
	}
	price, err := decimal.NewFromString(variant.Price)
	if err != nil {
		price = decimal.Zero
	}
	return CatalogEntry{
		SKU:            variant.SKU,
		DisplayID:      "shopify-" + strconv.FormatInt(variant.ID, 10),
		Name:           name,
		Price:          price,
		Source:         SourceShopify,
		QuantityOnHand: variant.InventoryQuantity,
	}
}

// nextPageInfo pulls the page_info cursor out of the rel="next" link,
// if the header carries one.
func nextPageInfo(link string) string {
	for _, part := range strings.Split(link, ",") {
		if !strings.Contains(part, `rel="next"`) {
			continue
		}
		idx := strings.Index(part, "page_info=")
		if idx == -1 {
			return ""
		}
		cursor := part[idx+len("page_info="):]
		if end := strings.IndexAny(cursor, "&>"); end != -1 {
			cursor = cursor[:end]
		}
		return cursor
	}
	return ""
}
