package todos

// Operation names, used by the remote store to route requests and by the
// logs to identify them.
const (
	OpList         = "getTodo"
	OpSetCompleted = "updateTodo"
	OpDelete       = "deleteTodo"
	OpAdd          = "newTodo"
)

const listQuery = `
  query getTodo {
    todos(order_by: { completed: asc, id: desc }) {
      id
      completed
      text
    }
  }
`

const setCompletedMutation = `
  mutation updateTodo($id: Int, $completed: Boolean) {
    update_todos(_set: { completed: $completed }, where: { id: { _eq: $id } }) {
      returning {
        completed
      }
    }
  }
`

const deleteMutation = `
  mutation deleteTodo($id: Int) {
    delete_todos(where: { id: { _eq: $id } }) {
      affected_rows
    }
  }
`

const addMutation = `
  mutation newTodo($text: String!) {
    insert_todos(objects: { text: $text }) {
      returning {
        completed
        id
        text
      }
    }
  }
`
