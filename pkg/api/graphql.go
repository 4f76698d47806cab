package api

import "context"

// graphqlPath is the GraphQL endpoint, served on the same host as the REST
// API.
const graphqlPath = "/graphql"

// GraphQL posts a query with variables and unwraps the GraphQL envelope into
// the same Result shape as REST calls: the "data" object on success, the
// first entry of "errors" as the error half otherwise.
func (c *Client) GraphQL(ctx context.Context, query string, variables map[string]interface{}) Result {
	body := map[string]interface{}{"query": query}
	if len(variables) > 0 {
		body["variables"] = variables
	}

	res := c.Post(ctx, graphqlPath, nil, body)
	if !res.OK() {
		return res
	}

	envelope, ok := res.Data.(map[string]interface{})
	if !ok {
		return errResult("malformed GraphQL response")
	}

	if errs, ok := envelope["errors"].([]interface{}); ok && len(errs) > 0 {
		msg := "GraphQL error"
		if first, ok := errs[0].(map[string]interface{}); ok {
			if m, ok := first["message"].(string); ok {
				msg = m
			}
		}
		return errResult("%s", msg)
	}

	return Result{Data: envelope["data"]}
}
