package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/benfen/radarmap/internal/core/usecases"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	sectorType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Sector",
		Fields: graphql.Fields{
			"inner_radius": &graphql.Field{Type: graphql.Float},
			"outer_radius": &graphql.Field{Type: graphql.Float},
			"start_angle":  &graphql.Field{Type: graphql.Float},
			"end_angle":    &graphql.Field{Type: graphql.Float},
		},
	})

	styleType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Style",
		Fields: graphql.Fields{
			"stroke":       &graphql.Field{Type: graphql.Boolean},
			"color":        &graphql.Field{Type: graphql.String},
			"weight":       &graphql.Field{Type: graphql.Float},
			"opacity":      &graphql.Field{Type: graphql.Float},
			"fill":         &graphql.Field{Type: graphql.Boolean},
			"fill_color":   &graphql.Field{Type: graphql.String},
			"fill_opacity": &graphql.Field{Type: graphql.Float},
		},
	})

	overlayType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Overlay",
		Fields: graphql.Fields{
			"id":     &graphql.Field{Type: graphql.String},
			"name":   &graphql.Field{Type: graphql.String},
			"center": &graphql.Field{Type: geoPointType},
			"sector": &graphql.Field{Type: sectorType},
			"style":  &graphql.Field{Type: styleType},
		},
	})

	pixelPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "PixelPoint",
		Fields: graphql.Fields{
			"x": &graphql.Field{Type: graphql.Float},
			"y": &graphql.Field{Type: graphql.Float},
		},
	})

	renderType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RenderResult",
		Fields: graphql.Fields{
			"overlay_id":      &graphql.Field{Type: graphql.String},
			"zoom":            &graphql.Field{Type: graphql.Float},
			"crs":             &graphql.Field{Type: graphql.String},
			"path":            &graphql.Field{Type: graphql.String},
			"anchor":          &graphql.Field{Type: pixelPointType},
			"inner_radius_px": &graphql.Field{Type: graphql.Int},
			"outer_radius_px": &graphql.Field{Type: graphql.Int},
			"style":           &graphql.Field{Type: styleType},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"overlay": &graphql.Field{
				Type:        overlayType,
				Description: "Get an overlay by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(string)
					return deps.Overlays.GetByID(p.Context, id)
				},
			},
			"overlays": &graphql.Field{
				Type:        graphql.NewList(overlayType),
				Description: "List overlays, newest first",
				Args: graphql.FieldConfigArgument{
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 100},
					"offset": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					limit := p.Args["limit"].(int)
					offset := p.Args["offset"].(int)
					overlays, _, err := deps.Overlays.List(p.Context, limit, offset)
					return overlays, err
				},
			},
			"overlaysNearby": &graphql.Field{
				Type:        graphql.NewList(overlayType),
				Description: "Find overlays centered near a location",
				Args: graphql.FieldConfigArgument{
					"lat":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radius": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 5000.0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lat := p.Args["lat"].(float64)
					lon := p.Args["lon"].(float64)
					radius := p.Args["radius"].(float64)
					limit := p.Args["limit"].(int)
					return deps.Overlays.FindNearby(p.Context, lat, lon, radius, limit)
				},
			},
			"render": &graphql.Field{
				Type:        renderType,
				Description: "Compute an overlay's sector path for a viewport",
				Args: graphql.FieldConfigArgument{
					"id":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"zoom":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"crs":      &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: "EPSG:3857"},
					"origin_x": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 0.0},
					"origin_y": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 0.0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(string)
					req := usecases.RenderRequest{
						Zoom:    p.Args["zoom"].(float64),
						CRS:     p.Args["crs"].(string),
						OriginX: p.Args["origin_x"].(float64),
						OriginY: p.Args["origin_y"].(float64),
					}
					return deps.Renders.Render(p.Context, id, req)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.Context(),
		})

		return c.JSON(result)
	}
}
