package http

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/derniermetro/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	stationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Station",
		Fields: graphql.Fields{
			"id":             &graphql.Field{Type: graphql.Int},
			"name":           &graphql.Field{Type: graphql.String},
			"line":           &graphql.Field{Type: graphql.String},
			"headwayMinutes": &graphql.Field{Type: graphql.Int},
		},
	})

	arrivalType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Arrival",
		Fields: graphql.Fields{
			"nextArrival": &graphql.Field{Type: graphql.String},
			"isLast":      &graphql.Field{Type: graphql.Boolean},
		},
	})

	nextMetroType := graphql.NewObject(graphql.ObjectConfig{
		Name: "NextMetro",
		Fields: graphql.Fields{
			"serviceStatus":  &graphql.Field{Type: graphql.String},
			"timezone":       &graphql.Field{Type: graphql.String},
			"station":        &graphql.Field{Type: graphql.String},
			"line":           &graphql.Field{Type: graphql.String},
			"headwayMinutes": &graphql.Field{Type: graphql.Int},
			"arrivals":       &graphql.Field{Type: graphql.NewList(arrivalType)},
		},
	})

	lastDepartureType := graphql.NewObject(graphql.ObjectConfig{
		Name: "LastDeparture",
		Fields: graphql.Fields{
			"station":    &graphql.Field{Type: graphql.String},
			"departedAt": &graphql.Field{Type: graphql.String},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"nextMetro": &graphql.Field{
				Type:        nextMetroType,
				Description: "Next arrivals at a station",
				Args: graphql.FieldConfigArgument{
					"station": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"n":       &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 1},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					station := p.Args["station"].(string)
					n := min(max(p.Args["n"].(int), minArrivals), maxArrivals)

					res, err := deps.Metro.NextMetro(p.Context, station, n, deps.now())
					if errors.Is(err, domain.ErrNotFound) {
						return nil, unknownStation(station, deps.Metro.Suggest(p.Context, station))
					}
					if err != nil {
						return nil, err
					}

					out := map[string]interface{}{
						"serviceStatus": res.Batch.Status,
						"timezone":      res.Batch.Timezone,
					}
					if !res.Batch.Closed() {
						out["station"] = res.Station.Name
						out["line"] = res.Station.Line
						out["headwayMinutes"] = res.Batch.HeadwayMinutes
						out["arrivals"] = res.Batch.Arrivals
					}
					return out, nil
				},
			},
			"lastMetro": &graphql.Field{
				Type:        lastDepartureType,
				Description: "Recorded last departure at a station",
				Args: graphql.FieldConfigArgument{
					"station": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					station := strings.TrimSpace(p.Args["station"].(string))
					dep, err := deps.Metro.LastMetro(p.Context, station)
					if errors.Is(err, domain.ErrNotFound) {
						return nil, fmt.Errorf("station not found: %s", station)
					}
					return dep, err
				},
			},
			"stations": &graphql.Field{
				Type:        graphql.NewList(stationType),
				Description: "List stations by name",
				Args: graphql.FieldConfigArgument{
					"offset": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 50},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					stations, _, err := deps.Stations.List(p.Context, p.Args["offset"].(int), p.Args["limit"].(int))
					return stations, err
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

func unknownStation(station string, suggestions []string) error {
	if len(suggestions) == 0 {
		return fmt.Errorf("unknown station: %s", station)
	}
	return fmt.Errorf("unknown station: %s (did you mean %s?)", station, strings.Join(suggestions, ", "))
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
		if err := c.BodyParser(&req); err != nil || req.Query == "" {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
