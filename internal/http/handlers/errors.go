package handlers

// Messages produced by the HTTP layer itself. Validation and not-found
// messages live with their rejections in the services package.
const (
	MsgInvalidIDType    = "Invalid Id type"
	MsgInvalidDataType  = "Invalid data type"
	MsgEndpointNotFound = "End point not found"
	MsgInternal         = "Internal Server Error"
)
