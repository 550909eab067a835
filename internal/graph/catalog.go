package graph

// Built-in endpoint catalog. Each entry maps one MCP tool onto one Graph
// operation. Categories group tools for discovery; scopes document the
// delegated permissions the operation needs.

func queryParam(name, desc string) ParamDescriptor {
	return ParamDescriptor{Name: name, In: ParamQuery, Type: "string", Description: desc}
}

func pathParam(name, desc string) ParamDescriptor {
	return ParamDescriptor{Name: name, In: ParamPath, Type: "string", Description: desc, Required: true}
}

func bodyParam(name, desc string, required bool, keys ...string) ParamDescriptor {
	pd := ParamDescriptor{Name: name, In: ParamBody, Type: "object", Description: desc, Required: required}
	if len(keys) > 0 {
		pd.Validator = RequireKeys(keys)
	}
	return pd
}

// listParams is the standard OData query surface for collection reads.
func listParams() []ParamDescriptor {
	return []ParamDescriptor{
		queryParam("filter", "OData filter expression"),
		queryParam("select", "Comma-separated list of properties to return"),
		queryParam("orderby", "Property to sort results by"),
		queryParam("top", "Maximum number of items to return"),
		queryParam("skip", "Number of items to skip"),
		queryParam("search", "Free-text search expression"),
		queryParam("count", "Include a total item count"),
	}
}

func itemParams() []ParamDescriptor {
	return []ParamDescriptor{
		queryParam("select", "Comma-separated list of properties to return"),
		queryParam("expand", "Related entities to include inline"),
	}
}

// DefaultEndpoints returns the built-in catalog.
func DefaultEndpoints() []Endpoint {
	return []Endpoint{
		// Mail
		{
			Tool: "list-mail-messages", Method: "GET", Path: "/me/messages",
			Description: "List messages in the signed-in user's mailbox",
			Category:    "mail", Scopes: []string{"Mail.Read"},
			Params: listParams(), SupportsTimezone: true,
		},
		{
			Tool: "list-mail-folders", Method: "GET", Path: "/me/mailFolders",
			Description: "List mail folders",
			Category:    "mail", Scopes: []string{"Mail.Read"},
			Params: listParams(),
		},
		{
			Tool: "list-mail-folder-messages", Method: "GET", Path: "/me/mailFolders/{mailFolderId}/messages",
			Description: "List messages in a specific mail folder",
			Category:    "mail", Scopes: []string{"Mail.Read"},
			Params:      append([]ParamDescriptor{pathParam("mailFolderId", "Mail folder id")}, listParams()...),
			SupportsTimezone: true,
		},
		{
			Tool: "get-mail-message", Method: "GET", Path: "/me/messages/{messageId}",
			Description: "Get a single message by id",
			Category:    "mail", Scopes: []string{"Mail.Read"},
			Params:      append([]ParamDescriptor{pathParam("messageId", "Message id")}, itemParams()...),
			SupportsTimezone: true,
		},
		{
			Tool: "send-mail", Method: "POST", Path: "/me/sendMail",
			Description: "Send a new message",
			Category:    "mail", Scopes: []string{"Mail.Send"},
			Params: []ParamDescriptor{
				bodyParam("message", "Message to send, with subject, body and toRecipients", true, "subject", "toRecipients"),
			},
		},
		{
			Tool: "delete-mail-message", Method: "DELETE", Path: "/me/messages/{messageId}",
			Description: "Delete a message",
			Category:    "mail", Scopes: []string{"Mail.ReadWrite"},
			Params:      []ParamDescriptor{pathParam("messageId", "Message id")},
		},
		{
			Tool: "move-mail-message", Method: "POST", Path: "/me/messages/{messageId}/move",
			Description: "Move a message to another folder",
			Category:    "mail", Scopes: []string{"Mail.ReadWrite"},
			Params: []ParamDescriptor{
				pathParam("messageId", "Message id"),
				bodyParam("destinationId", "Target folder, as {\"destinationId\": ...}", true, "destinationId"),
			},
		},

		// Calendar
		{
			Tool: "list-calendars", Method: "GET", Path: "/me/calendars",
			Description: "List the signed-in user's calendars",
			Category:    "calendar", Scopes: []string{"Calendars.Read"},
			Params: listParams(),
		},
		{
			Tool: "list-calendar-events", Method: "GET", Path: "/me/events",
			Description: "List events in the default calendar",
			Category:    "calendar", Scopes: []string{"Calendars.Read"},
			Params: listParams(), SupportsTimezone: true,
		},
		{
			Tool: "get-calendar-view", Method: "GET", Path: "/me/calendarView",
			Description: "Expand recurring events within a date range",
			Category:    "calendar", Scopes: []string{"Calendars.Read"},
			Params: append([]ParamDescriptor{
				{Name: "startDateTime", In: ParamQuery, Type: "string", Description: "Range start (ISO 8601)", Required: true},
				{Name: "endDateTime", In: ParamQuery, Type: "string", Description: "Range end (ISO 8601)", Required: true},
			}, listParams()...),
			SupportsTimezone: true,
		},
		{
			Tool: "get-calendar-event", Method: "GET", Path: "/me/events/{eventId}",
			Description: "Get a single event by id",
			Category:    "calendar", Scopes: []string{"Calendars.Read"},
			Params:      append([]ParamDescriptor{pathParam("eventId", "Event id")}, itemParams()...),
			SupportsTimezone: true,
		},
		{
			Tool: "create-calendar-event", Method: "POST", Path: "/me/events",
			Description: "Create a new event in the default calendar",
			Category:    "calendar", Scopes: []string{"Calendars.ReadWrite"},
			Params: []ParamDescriptor{
				bodyParam("event", "Event to create, with subject, start and end", true, "subject", "start", "end"),
			},
			SupportsTimezone: true,
		},
		{
			Tool: "update-calendar-event", Method: "PATCH", Path: "/me/events/{eventId}",
			Description: "Update properties of an event",
			Category:    "calendar", Scopes: []string{"Calendars.ReadWrite"},
			Params: []ParamDescriptor{
				pathParam("eventId", "Event id"),
				bodyParam("event", "Event properties to change", true),
			},
		},
		{
			Tool: "delete-calendar-event", Method: "DELETE", Path: "/me/events/{eventId}",
			Description: "Delete an event",
			Category:    "calendar", Scopes: []string{"Calendars.ReadWrite"},
			Params:      []ParamDescriptor{pathParam("eventId", "Event id")},
		},

		// Files / OneDrive
		{
			Tool: "list-drives", Method: "GET", Path: "/me/drives",
			Description: "List drives available to the signed-in user",
			Category:    "files", Scopes: []string{"Files.Read"},
			Params: listParams(),
		},
		{
			Tool: "get-drive-root-item", Method: "GET", Path: "/drives/{driveId}/root",
			Description: "Get the root folder of a drive",
			Category:    "files", Scopes: []string{"Files.Read"},
			Params:      append([]ParamDescriptor{pathParam("driveId", "Drive id")}, itemParams()...),
		},
		{
			Tool: "list-folder-children", Method: "GET", Path: "/drives/{driveId}/items/{itemId}/children",
			Description: "List the immediate children of a drive folder",
			Category:    "files", Scopes: []string{"Files.Read"},
			Params: append([]ParamDescriptor{
				pathParam("driveId", "Drive id"),
				pathParam("itemId", "Folder item id"),
			}, listParams()...),
		},
		{
			Tool: "get-drive-item", Method: "GET", Path: "/drives/{driveId}/items/{itemId}",
			Description: "Get metadata for a drive item",
			Category:    "files", Scopes: []string{"Files.Read"},
			Params: append([]ParamDescriptor{
				pathParam("driveId", "Drive id"),
				pathParam("itemId", "Item id"),
			}, itemParams()...),
		},
		{
			Tool: "download-file-content", Method: "GET", Path: "/drives/{driveId}/items/{itemId}/content",
			Description: "Download the raw content of a drive item",
			Category:    "files", Scopes: []string{"Files.Read"},
			Params: []ParamDescriptor{
				pathParam("driveId", "Drive id"),
				pathParam("itemId", "Item id"),
			},
			Binary: true, ReturnDownloadURL: true,
		},
		{
			Tool: "upload-file-content", Method: "PUT", Path: "/drives/{driveId}/items/{itemId}/content",
			Description: "Replace the content of a drive item",
			Category:    "files", Scopes: []string{"Files.ReadWrite"},
			Params: []ParamDescriptor{
				pathParam("driveId", "Drive id"),
				pathParam("itemId", "Item id"),
				bodyParam("content", "New file content", true),
			},
		},
		{
			Tool: "delete-drive-item", Method: "DELETE", Path: "/drives/{driveId}/items/{itemId}",
			Description: "Delete a drive item",
			Category:    "files", Scopes: []string{"Files.ReadWrite"},
			Params: []ParamDescriptor{
				pathParam("driveId", "Drive id"),
				pathParam("itemId", "Item id"),
			},
		},

		// Contacts
		{
			Tool: "list-contacts", Method: "GET", Path: "/me/contacts",
			Description: "List the signed-in user's contacts",
			Category:    "contacts", Scopes: []string{"Contacts.Read"},
			Params: listParams(),
		},
		{
			Tool: "get-contact", Method: "GET", Path: "/me/contacts/{contactId}",
			Description: "Get a single contact by id",
			Category:    "contacts", Scopes: []string{"Contacts.Read"},
			Params:      append([]ParamDescriptor{pathParam("contactId", "Contact id")}, itemParams()...),
		},
		{
			Tool: "create-contact", Method: "POST", Path: "/me/contacts",
			Description: "Create a new contact",
			Category:    "contacts", Scopes: []string{"Contacts.ReadWrite"},
			Params: []ParamDescriptor{
				bodyParam("contact", "Contact to create, with givenName", true, "givenName"),
			},
		},

		// To Do
		{
			Tool: "list-todo-task-lists", Method: "GET", Path: "/me/todo/lists",
			Description: "List the signed-in user's To Do task lists",
			Category:    "todo", Scopes: []string{"Tasks.Read"},
			Params: listParams(),
		},
		{
			Tool: "list-todo-tasks", Method: "GET", Path: "/me/todo/lists/{todoTaskListId}/tasks",
			Description: "List tasks in a To Do list",
			Category:    "todo", Scopes: []string{"Tasks.Read"},
			Params:      append([]ParamDescriptor{pathParam("todoTaskListId", "Task list id")}, listParams()...),
		},
		{
			Tool: "create-todo-task", Method: "POST", Path: "/me/todo/lists/{todoTaskListId}/tasks",
			Description: "Create a task in a To Do list",
			Category:    "todo", Scopes: []string{"Tasks.ReadWrite"},
			Params: []ParamDescriptor{
				pathParam("todoTaskListId", "Task list id"),
				bodyParam("task", "Task to create, with a title", true, "title"),
			},
		},
		{
			Tool: "update-todo-task", Method: "PATCH", Path: "/me/todo/lists/{todoTaskListId}/tasks/{todoTaskId}",
			Description: "Update a To Do task",
			Category:    "todo", Scopes: []string{"Tasks.ReadWrite"},
			Params: []ParamDescriptor{
				pathParam("todoTaskListId", "Task list id"),
				pathParam("todoTaskId", "Task id"),
				bodyParam("task", "Task properties to change", true),
			},
		},

		// User profile
		{
			Tool: "get-current-user", Method: "GET", Path: "/me",
			Description: "Get the signed-in user's profile",
			Category:    "user", Scopes: []string{"User.Read"},
			Params: itemParams(),
		},
		{
			Tool: "get-user-photo", Method: "GET", Path: "/me/photo/$value",
			Description: "Get the signed-in user's profile photo",
			Category:    "user", Scopes: []string{"User.Read"},
			Binary: true,
		},

		// Organization-only surfaces
		{
			Tool: "list-users", Method: "GET", Path: "/users",
			Description: "List users in the organization",
			Category:    "user", Scopes: []string{"User.Read.All"},
			Params: listParams(), OrgOnly: true,
		},
		{
			Tool: "list-sites", Method: "GET", Path: "/sites",
			Description: "Search SharePoint sites",
			Category:    "sites", Scopes: []string{"Sites.Read.All"},
			Params: listParams(), OrgOnly: true,
		},
		{
			Tool: "get-site", Method: "GET", Path: "/sites/{siteId}",
			Description: "Get a SharePoint site by id",
			Category:    "sites", Scopes: []string{"Sites.Read.All"},
			Params:      append([]ParamDescriptor{pathParam("siteId", "Site id")}, itemParams()...),
			OrgOnly:     true,
		},
		{
			Tool: "list-site-drives", Method: "GET", Path: "/sites/{siteId}/drives",
			Description: "List document libraries of a SharePoint site",
			Category:    "sites", Scopes: []string{"Sites.Read.All"},
			Params:      append([]ParamDescriptor{pathParam("siteId", "Site id")}, listParams()...),
			OrgOnly:     true,
		},
		{
			Tool: "list-joined-teams", Method: "GET", Path: "/me/joinedTeams",
			Description: "List teams the signed-in user is a member of",
			Category:    "teams", Scopes: []string{"Team.ReadBasic.All"},
			Params: listParams(), OrgOnly: true,
		},
		{
			Tool: "list-team-channels", Method: "GET", Path: "/teams/{teamId}/channels",
			Description: "List channels of a team",
			Category:    "teams", Scopes: []string{"Channel.ReadBasic.All"},
			Params:      append([]ParamDescriptor{pathParam("teamId", "Team id")}, listParams()...),
			OrgOnly:     true,
		},
		{
			Tool: "list-channel-messages", Method: "GET", Path: "/teams/{teamId}/channels/{channelId}/messages",
			Description: "List messages in a team channel",
			Category:    "teams", Scopes: []string{"ChannelMessage.Read.All"},
			Params: append([]ParamDescriptor{
				pathParam("teamId", "Team id"),
				pathParam("channelId", "Channel id"),
			}, listParams()...),
			OrgOnly: true,
		},
		{
			Tool: "send-channel-message", Method: "POST", Path: "/teams/{teamId}/channels/{channelId}/messages",
			Description: "Send a message to a team channel",
			Category:    "teams", Scopes: []string{"ChannelMessage.Send"},
			Params: []ParamDescriptor{
				pathParam("teamId", "Team id"),
				pathParam("channelId", "Channel id"),
				bodyParam("body", "Message body, as {\"body\": {\"content\": ...}}", true),
			},
			OrgOnly: true,
		},
		{
			Tool: "list-chats", Method: "GET", Path: "/me/chats",
			Description: "List the signed-in user's chats",
			Category:    "chat", Scopes: []string{"Chat.Read"},
			Params: listParams(), OrgOnly: true,
		},
		{
			Tool: "list-chat-messages", Method: "GET", Path: "/me/chats/{chatId}/messages",
			Description: "List messages in a chat",
			Category:    "chat", Scopes: []string{"Chat.Read"},
			Params:      append([]ParamDescriptor{pathParam("chatId", "Chat id")}, listParams()...),
			OrgOnly:     true,
		},
		{
			Tool: "list-planner-tasks", Method: "GET", Path: "/me/planner/tasks",
			Description: "List Planner tasks assigned to the signed-in user",
			Category:    "planner", Scopes: []string{"Tasks.Read"},
			Params: listParams(), OrgOnly: true,
		},
		{
			Tool: "get-planner-plan", Method: "GET", Path: "/planner/plans/{planId}",
			Description: "Get a Planner plan by id",
			Category:    "planner", Scopes: []string{"Tasks.Read"},
			Params:      append([]ParamDescriptor{pathParam("planId", "Plan id")}, itemParams()...),
			OrgOnly:     true,
		},
	}
}
