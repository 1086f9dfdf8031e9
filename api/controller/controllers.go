// api/controller/controllers.go
package controller

import "github.com/dev-mohitbeniwal/arbiter/api/service"

type Controllers struct {
	Decision *DecisionController
	Rules    *RulesController
	Audit    *AuditController
}

func InitializeControllers(decisionService service.IDecisionService) *Controllers {
	return &Controllers{
		Decision: NewDecisionController(decisionService),
		Rules:    NewRulesController(decisionService),
		Audit:    NewAuditController(decisionService),
	}
}
