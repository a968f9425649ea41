package curseforge

// Response is the envelope every API response is wrapped in.
type Response[T any] struct {
	Data       T           `json:"data"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// decodeEnvelope unwraps body into its payload and optional pagination.
func decodeEnvelope[T any](body []byte) (T, *Pagination, error) {
	var resp Response[T]
	if err := decodeStrict(body, &resp); err != nil {
		var zero T
		return zero, nil, err
	}
	return resp.Data, resp.Pagination, nil
}
