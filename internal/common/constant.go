package common

// SessionTokenHeaderName is the HTTP header carrying the session token.
const SessionTokenHeaderName = "X-Token"

// RootParentID is the parent id of records stored at the top level.
const RootParentID = "0"
