package aws

import (
	"fmt"

	"github.com/cloudcomb/ncp/internal/utils"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// Route is one inline route of a route table. Exactly one of GatewayIdRef and
// NatGatewayIdRef should be set.
type Route struct {
	DestinationCidr string
	GatewayIdRef    string
	NatGatewayIdRef string
}

func GenerateRouteTableResource(tfResourceName, vpcIdRef string, routes []Route, tags map[string]hclwrite.Tokens) *hclwrite.Block {
	routeTableBlock := hclwrite.NewBlock("resource", []string{"aws_route_table", tfResourceName})
	routeTableBlock.Body().SetAttributeRaw("vpc_id", utils.TokensForResourceReference(vpcIdRef))

	for _, route := range routes {
		routeTableBlock.Body().AppendNewline()
		routeBlock := hclwrite.NewBlock("route", nil)
		routeBlock.Body().SetAttributeValue("cidr_block", cty.StringVal(route.DestinationCidr))
		if route.GatewayIdRef != "" {
			routeBlock.Body().SetAttributeRaw("gateway_id", utils.TokensForResourceReference(route.GatewayIdRef))
		}
		if route.NatGatewayIdRef != "" {
			routeBlock.Body().SetAttributeRaw("nat_gateway_id", utils.TokensForResourceReference(route.NatGatewayIdRef))
		}
		routeTableBlock.Body().AppendBlock(routeBlock)
	}

	if len(tags) > 0 {
		routeTableBlock.Body().AppendNewline()
		routeTableBlock.Body().SetAttributeRaw("tags", utils.TokensForMap(tags))
	}

	return routeTableBlock
}

func GenerateRouteTableAssociationResource(tfResourceName, subnetIdRef, routeTableIdRef string) *hclwrite.Block {
	associationBlock := hclwrite.NewBlock("resource", []string{"aws_route_table_association", tfResourceName})
	associationBlock.Body().SetAttributeRaw("subnet_id", utils.TokensForResourceReference(subnetIdRef))
	associationBlock.Body().SetAttributeRaw("route_table_id", utils.TokensForResourceReference(routeTableIdRef))

	return associationBlock
}

func GenerateRouteTableResourceReference(tfResourceName string) string {
	return fmt.Sprintf("aws_route_table.%s.id", tfResourceName)
}
