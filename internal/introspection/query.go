package introspection

import "encoding/json"

// Query is the introspection document sent to endpoints. TypeRef unwraps
// seven levels of ofType, enough for [[T!]!]! style wrappers.
const Query = `{  __schema {  queryType { name },  mutationType { name },  subscriptionType { name },  types{  ...FullType  },  directives{  name,  description,  locations,  args{  ...InputValue  }  }  } },   fragment FullType on __Type{  kind,  name,  description,  fields(includeDeprecated: true){  name,  description,  args{  ...InputValue  },  type{  ...TypeRef  },  isDeprecated,  deprecationReason  },  inputFields{  ...InputValue  },  interfaces{  ...TypeRef  },  enumValues(includeDeprecated: true){  name,  description,  isDeprecated,  deprecationReason  },  possibleTypes{  ...TypeRef  } },   fragment InputValue on __InputValue{  name,  description,  type{ ...TypeRef },  defaultValue },   fragment TypeRef on __Type{  kind,  name,  ofType{  kind,  name,  ofType{  kind,  name,  ofType{  kind,  name,  ofType{  kind,  name,  ofType{  kind , name,  ofType{  kind , name,  ofType{  kind,  name  }  }  }  }  }  }  } }`

type requestBody struct {
	Query string `json:"query"`
}

func RequestBody() []byte {
	raw, _ := json.Marshal(requestBody{Query: Query})
	return raw
}
