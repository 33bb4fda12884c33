package response

// Body is the uniform envelope every JSON endpoint returns:
// {success, data|message, pagination?}.
type Body struct {
	Success    bool        `json:"success"`
	Data       any         `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Pages int   `json:"pages"`
	Limit int   `json:"limit"`
}

func OK(data any) Body { return Body{Success: true, Data: data} }

func List(data any, p Pagination) Body {
	return Body{Success: true, Data: data, Pagination: &p}
}

func Msg(message string) Body { return Body{Success: true, Message: message} }

func Error(message string) Body { return Body{Success: false, Message: message} }
