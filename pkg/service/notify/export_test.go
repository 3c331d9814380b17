package notify

var NewTodoEvent = newTodoEvent
