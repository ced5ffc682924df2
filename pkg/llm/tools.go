package llm

// CiceroneTools returns the tool surface offered to the conversation model.
// Names and argument shapes match the MCP tool registrations so a tool call
// behaves the same through either entry point. refresh_catalog is operator
// facing and stays off the conversational surface.
func CiceroneTools() []ToolDefinition {
	return []ToolDefinition{
		{
			Name:        "list_catalog",
			Description: "List every beer currently in the brewery catalog with style, ABV and IBU.",
			InputSchema: objectSchema(nil, nil),
		},
		{
			Name:        "get_beer_details",
			Description: "Get the full details of one beer: description, tasting notes and food pairings.",
			InputSchema: objectSchema(map[string]any{
				"beer_id": stringProp("Beer id or name from the catalog"),
			}, []string{"beer_id"}),
		},
		{
			Name:        "suggest_next_beer",
			Description: "Suggest the next beer to taste, lightest first, skipping beers already tasted.",
			InputSchema: objectSchema(nil, nil),
		},
		{
			Name:        "get_tasting_order",
			Description: "Return the full catalog in recommended tasting order, lightest to most intense.",
			InputSchema: objectSchema(nil, nil),
		},
		{
			Name: "record_feedback",
			Description: "Record the customer's reaction to a beer at one tasting step. " +
				"Use tags for flavor notes (e.g. citrus, coffee) and dimension-prefixed " +
				"tags for explicit statements (bitterness:high, alcohol:light, body:full, style:ipa).",
			InputSchema: objectSchema(map[string]any{
				"beer_id":  stringProp("Beer id or name the feedback refers to"),
				"step":     enumProp("Tasting step", "appearance", "aroma", "taste", "mouthfeel"),
				"polarity": enumProp("Customer reaction", "liked", "disliked", "neutral"),
				"tags": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "Flavor notes or attribute statements extracted from what the customer said",
				},
				"note":   stringProp("Verbatim customer comment, optional"),
				"rating": map[string]any{"type": "integer", "description": "Overall rating 1-5, optional"},
			}, []string{"beer_id", "step", "polarity"}),
		},
		{
			Name:        "analyze_preferences",
			Description: "Summarize the customer's preference profile. Needs at least two evaluated beers.",
			InputSchema: objectSchema(nil, nil),
		},
		{
			Name:        "predict_favorite",
			Description: "Rank the tasted beers by fit with the customer's stated preferences, best first.",
			InputSchema: objectSchema(nil, nil),
		},
		{
			Name:        "get_pairings",
			Description: "Suggest foods that pair with a given beer.",
			InputSchema: objectSchema(map[string]any{
				"beer_id": stringProp("Beer id or name from the catalog"),
			}, []string{"beer_id"}),
		},
		{
			Name:        "recommend_by_food",
			Description: "Recommend beers from the catalog that pair with a dish the customer plans to eat.",
			InputSchema: objectSchema(map[string]any{
				"food": stringProp("The dish or food, e.g. tacos, chocolate cake"),
			}, []string{"food"}),
		},
		{
			Name:        "generate_discount_code",
			Description: "Issue a discount code. Set earned=true only after a completed tasting or purchase.",
			InputSchema: objectSchema(map[string]any{
				"earned": map[string]any{"type": "boolean", "description": "Whether the customer earned the code"},
			}, nil),
		},
		{
			Name:        "prepare_purchase",
			Description: "Build store purchase links for the beers the customer wants to buy.",
			InputSchema: objectSchema(map[string]any{
				"beer_ids": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "Beer ids or names to buy",
				},
				"discount_code": stringProp("Discount code to apply, optional"),
			}, []string{"beer_ids"}),
		},
		{
			Name:        "collect_shipping_info",
			Description: "Validate the customer's shipping details for an order.",
			InputSchema: objectSchema(map[string]any{
				"order_id":    stringProp("Order id from prepare_purchase"),
				"full_name":   stringProp("Customer full name"),
				"email":       stringProp("Contact email"),
				"phone":       stringProp("Contact phone, at least 10 digits"),
				"address":     stringProp("Street address"),
				"city":        stringProp("City"),
				"state":       stringProp("State"),
				"postal_code": stringProp("Postal code"),
			}, []string{"order_id", "full_name", "email", "phone", "address"}),
		},
		{
			Name:        "generate_payment_link",
			Description: "Generate a checkout link for a confirmed order.",
			InputSchema: objectSchema(map[string]any{
				"order_id": stringProp("Order id from prepare_purchase"),
				"amount":   map[string]any{"type": "number", "description": "Order total in MXN"},
			}, []string{"order_id", "amount"}),
		},
	}
}

func objectSchema(properties map[string]any, required []string) map[string]any {
	if properties == nil {
		properties = map[string]any{}
	}
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func stringProp(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func enumProp(description string, values ...string) map[string]any {
	enum := make([]any, len(values))
	for i, v := range values {
		enum[i] = v
	}
	return map[string]any{"type": "string", "enum": enum, "description": description}
}
