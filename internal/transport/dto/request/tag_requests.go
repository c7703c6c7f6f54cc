package request

type ListTagsRequest struct {
	TeamId string `json:"team_id"`
}

type CreateTagRequest struct {
	TeamId      string  `json:"-"`
	Name        string  `json:"name"`
	Color       string  `json:"color"`
	Description *string `json:"description"`
}

type UpdateTagRequest struct {
	TeamId      string  `json:"-"`
	TagId       string  `json:"-"`
	Name        *string `json:"name"`
	Color       *string `json:"color"`
	Description *string `json:"description"`
}

type DeleteTagRequest struct {
	TeamId string `json:"team_id"`
	TagId  string `json:"tag_id"`
}

type GetTagRequest struct {
	TeamId string `json:"team_id"`
	TagId  string `json:"tag_id"`
}
