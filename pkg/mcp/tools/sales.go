package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/cerveza-fortuna/cicerone-engine/pkg/models"
)

// RegisterSalesTools registers the purchase-assistance MCP tools.
func RegisterSalesTools(s *server.MCPServer, deps *Deps) {
	registerGenerateDiscountCodeTool(s, deps)
	registerPreparePurchaseTool(s, deps)
	registerCollectShippingInfoTool(s, deps)
	registerGeneratePaymentLinkTool(s, deps)
}

func registerGenerateDiscountCodeTool(s *server.MCPServer, deps *Deps) {
	tool := mcp.NewTool(
		"generate_discount_code",
		mcp.WithDescription(
			"Issue a discount code for the customer. Set earned=true only after a "+
				"completed tasting or a guided purchase; earned codes carry a larger "+
				"discount than courtesy codes.",
		),
		mcp.WithString("session_id",
			mcp.Description("Tasting session id; omit to start a new session")),
		mcp.WithBoolean("earned",
			mcp.Description("Whether the customer earned the code")),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		session, err := resolveSession(ctx, deps, req)
		if err != nil {
			return nil, err
		}

		code, err := deps.Sales.GenerateDiscountCode(ctx, session, req.GetBool("earned", false))
		if err != nil {
			return nil, fmt.Errorf("failed to generate discount code: %w", err)
		}
		return jsonResult(code)
	})
}

func registerPreparePurchaseTool(s *server.MCPServer, deps *Deps) {
	tool := mcp.NewTool(
		"prepare_purchase",
		mcp.WithDescription(
			"Build store purchase links for the beers the customer wants to buy. "+
				"Returns an order id used by the shipping and payment tools.",
		),
		mcp.WithArray("beer_ids",
			mcp.Required(),
			mcp.Description("Beer ids or names to buy"),
			mcp.Items(map[string]any{"type": "string"})),
		mcp.WithString("discount_code",
			mcp.Description("Discount code to apply")),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		beerIDs := req.GetStringSlice("beer_ids", nil)
		if len(beerIDs) == 0 {
			return nil, fmt.Errorf("beer_ids must contain at least one beer")
		}

		order, err := deps.Sales.PreparePurchase(ctx, beerIDs, req.GetString("discount_code", ""))
		if err != nil {
			return nil, fmt.Errorf("failed to prepare purchase: %w", err)
		}
		return jsonResult(order)
	})
}

func registerCollectShippingInfoTool(s *server.MCPServer, deps *Deps) {
	tool := mcp.NewTool(
		"collect_shipping_info",
		mcp.WithDescription(
			"Validate the customer's shipping details for an order. Details are "+
				"checked, never stored in the clear, and never logged verbatim.",
		),
		mcp.WithString("order_id",
			mcp.Required(),
			mcp.Description("Order id from prepare_purchase")),
		mcp.WithString("full_name", mcp.Required(), mcp.Description("Customer full name")),
		mcp.WithString("email", mcp.Required(), mcp.Description("Contact email")),
		mcp.WithString("phone", mcp.Required(), mcp.Description("Contact phone, at least 10 digits")),
		mcp.WithString("address", mcp.Required(), mcp.Description("Street address")),
		mcp.WithString("city", mcp.Description("City")),
		mcp.WithString("state", mcp.Description("State")),
		mcp.WithString("postal_code", mcp.Description("Postal code")),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		orderID, err := req.RequireString("order_id")
		if err != nil {
			return nil, err
		}

		info := models.ShippingInfo{
			FullName:   req.GetString("full_name", ""),
			Email:      req.GetString("email", ""),
			Phone:      req.GetString("phone", ""),
			Address:    req.GetString("address", ""),
			City:       req.GetString("city", ""),
			State:      req.GetString("state", ""),
			PostalCode: req.GetString("postal_code", ""),
		}
		if err := deps.Sales.CollectShipping(ctx, orderID, info); err != nil {
			return nil, fmt.Errorf("shipping details rejected: %w", err)
		}

		result := struct {
			Status  string `json:"status"`
			OrderID string `json:"order_id"`
		}{
			Status:  "accepted",
			OrderID: orderID,
		}
		return jsonResult(result)
	})
}

func registerGeneratePaymentLinkTool(s *server.MCPServer, deps *Deps) {
	tool := mcp.NewTool(
		"generate_payment_link",
		mcp.WithDescription(
			"Generate a checkout link for a confirmed order.",
		),
		mcp.WithString("order_id",
			mcp.Required(),
			mcp.Description("Order id from prepare_purchase")),
		mcp.WithNumber("amount",
			mcp.Required(),
			mcp.Description("Order total in MXN")),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		orderID, err := req.RequireString("order_id")
		if err != nil {
			return nil, err
		}
		amount, err := req.RequireFloat("amount")
		if err != nil {
			return nil, err
		}

		link, err := deps.Sales.GeneratePaymentLink(ctx, orderID, amount)
		if err != nil {
			return nil, fmt.Errorf("failed to generate payment link: %w", err)
		}
		return jsonResult(link)
	})
}
