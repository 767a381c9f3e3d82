package textgen

import "fmt"

// planPromptTemplate asks the model for a structured plan. The JSON
// contract matches what plan.Extract parses on its structured path;
// when the model ignores it and answers in prose, the heuristic path
// still recovers a plan.
const planPromptTemplate = `Crie um plano detalhado de tarefas e subtarefas baseado nesta solicitação: %s

Responda com um JSON neste formato, dentro de um bloco de código:

` + "```json" + `
{
  "title": "Título do plano",
  "tasks": [
    {
      "title": "Tarefa principal",
      "description": "Descrição breve",
      "priority": "alta | média | baixa",
      "subtasks": ["Subtarefa 1", "Subtarefa 2"]
    }
  ]
}
` + "```" + `

Use entre 3 e 10 subtarefas por tarefa e prioridade "média" quando estiver em dúvida.`

// PlanPrompt builds the generation prompt for a user's planning
// request.
func PlanPrompt(request string) string {
	return fmt.Sprintf(planPromptTemplate, request)
}
