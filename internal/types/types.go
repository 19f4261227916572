package types

// Response is the JSON body of every HTTP reply.
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
}

// MetricSample is one counter value with its labels.
type MetricSample struct {
	Name   string            `json:"name"`
	Labels map[string]string `json:"labels"`
	Value  float64           `json:"value"`
}
