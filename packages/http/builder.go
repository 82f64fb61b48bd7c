package http

// BuildRequest turns spec into a ConcreteRequest. It performs no I/O and never
// modifies spec. The only error it returns is a *MalformedURLError.
//
// Parameters are always appended to the URI. For requests that carry an entity and
// have no body, the same parameters are also form-encoded into the entity.
// The method is matched case-insensitively; unknown methods are sent as POST.
func BuildRequest(spec *RequestSpec) (*ConcreteRequest, error) {
	uri, err := AppendParamsToURL(spec.URL, spec.Parameters)
	if err != nil {
		return nil, err
	}

	req := &ConcreteRequest{
		Method: ParseMethod(string(spec.Method)),
		URI:    uri,
	}

	switch {
	case req.Method == MethodHead:
	case req.Method == MethodGet && spec.Body == "":
	case req.Method == MethodTrace:
	case req.Method == MethodOptions:
	default:
		req.Entity = makeEntity(spec)
	}

	if len(spec.Headers) > 0 {
		req.Headers = make([]NameValuePair, len(spec.Headers))
		copy(req.Headers, spec.Headers)
	}

	return req, nil
}

func makeEntity(spec *RequestSpec) *Entity {
	if spec.Body != "" {
		contentType, _ := HeaderValue(spec.Headers, HeaderContentType)
		return &Entity{
			Content:     []byte(spec.Body),
			ContentType: contentType,
		}
	}
	return formEntity(spec.Parameters)
}

func formEntity(params []NameValuePair) *Entity {
	return &Entity{
		Content:     []byte(EncodeForm(params)),
		ContentType: FormContentType,
	}
}
