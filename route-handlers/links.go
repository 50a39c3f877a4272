package routehandlers

import (
	"fmt"
	"net/http"

	"github.com/coreybb/mylist/webutil"
)

const (
	pathUsers   = "/users"
	pathMe      = "/users/me"
	pathToken   = "/auth/token"
	pathTasks   = "/tasks"
	taskPathFmt = "/tasks/%d"
)

func link(method, href string) webutil.Link {
	return webutil.Link{Href: href, Method: method}
}

func taskPath(taskID int64) string {
	return fmt.Sprintf(taskPathFmt, taskID)
}

func registerLinks() webutil.Links {
	return webutil.Links{
		"self":                   link(http.MethodPost, pathUsers),
		"login_for_access_token": link(http.MethodPost, pathToken),
	}
}

func loginLinks() webutil.Links {
	return webutil.Links{
		"self":        link(http.MethodPost, pathToken),
		"get_user":    link(http.MethodGet, pathMe),
		"update_user": link(http.MethodPatch, pathMe),
		"delete_user": link(http.MethodDelete, pathMe),
	}
}

func currentUserLinks() webutil.Links {
	return webutil.Links{
		"self":        link(http.MethodGet, pathMe),
		"update_user": link(http.MethodPatch, pathMe),
		"delete_user": link(http.MethodDelete, pathMe),
		"get_tasks":   link(http.MethodGet, pathTasks),
	}
}

func updatedUserLinks() webutil.Links {
	return webutil.Links{
		"self":        link(http.MethodPatch, pathMe),
		"get_user":    link(http.MethodGet, pathMe),
		"delete_user": link(http.MethodDelete, pathMe),
	}
}

// taskLinks lists the operations reachable from a single task. self is the
// relation used to reach it in this response.
func taskLinks(taskID int64, self webutil.Link) webutil.Links {
	return webutil.Links{
		"self":        self,
		"get_task":    link(http.MethodGet, taskPath(taskID)),
		"get_tasks":   link(http.MethodGet, pathTasks),
		"new_task":    link(http.MethodPost, pathTasks),
		"update_task": link(http.MethodPatch, taskPath(taskID)),
		"delete_task": link(http.MethodDelete, taskPath(taskID)),
	}
}
